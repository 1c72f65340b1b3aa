package mock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFactory stands in for the real implementation and records which
// clients were requested from it.
type fakeFactory struct {
	requested []string
}

type fakeClient struct {
	library string
	service string
}

func (f *fakeFactory) NewClient(library, service string) (Client, error) {
	f.requested = append(f.requested, fmt.Sprintf("%s/%s", library, service))
	return &fakeClient{library: library, service: service}, nil
}

func (c *fakeClient) Call(_ context.Context, operation string, _ map[string]any) (any, error) {
	return fmt.Sprintf("real:%s/%s/%s", c.library, c.service, operation), nil
}

func TestRegistryPassthroughWhenUnpatched(t *testing.T) {
	base := &fakeFactory{}
	registry := NewRegistry(base)

	client, err := registry.NewClient("boto3", "cloudwatch")
	require.NoError(t, err)

	got, err := client.Call(context.Background(), "GetMetricData", nil)
	require.NoError(t, err)
	assert.Equal(t, "real:boto3/cloudwatch/GetMetricData", got)
	assert.Equal(t, []string{"boto3/cloudwatch"}, base.requested)
	assert.False(t, registry.IsPatched())
}

func TestRegistrySequentialResponses(t *testing.T) {
	// Scenario: two responses configured, third call repeats the last one.
	cfg := Config{
		"boto3": ServiceMocks{
			"cloudwatch": OperationMocks{
				"GetMetricData": SequenceResponse(
					InlineResponse(map[string]any{"a": float64(1)}),
					InlineResponse(map[string]any{"a": float64(2)}),
				),
			},
		},
	}

	registry := NewRegistry(&fakeFactory{})
	require.NoError(t, registry.Patch(cfg, ""))

	client, err := registry.NewClient("boto3", "cloudwatch")
	require.NoError(t, err)

	expected := []map[string]any{
		{"a": float64(1)},
		{"a": float64(2)},
		{"a": float64(2)},
		{"a": float64(2)},
	}
	for i, want := range expected {
		got, err := client.Call(context.Background(), "GetMetricData", nil)
		require.NoError(t, err, "call %d", i+1)
		assert.Equal(t, want, got, "call %d", i+1)
	}
}

func TestRegistryUnmockedOperation(t *testing.T) {
	cfg := Config{
		"boto3": ServiceMocks{
			"cloudwatch": OperationMocks{
				"GetMetricData": InlineResponse("data"),
			},
		},
	}

	registry := NewRegistry(&fakeFactory{})
	require.NoError(t, registry.Patch(cfg, ""))

	client, err := registry.NewClient("boto3", "cloudwatch")
	require.NoError(t, err)

	// The error must be raised deterministically, on every call.
	for i := 0; i < 3; i++ {
		_, err := client.Call(context.Background(), "ListMetrics", nil)
		require.Error(t, err)

		unmocked := &UnmockedOperationError{}
		require.ErrorAs(t, err, &unmocked)
		assert.Equal(t, "boto3", unmocked.Library)
		assert.Equal(t, "cloudwatch", unmocked.Service)
		assert.Equal(t, "ListMetrics", unmocked.Operation)
	}
}

func TestRegistryUnlistedLibraryPassesThrough(t *testing.T) {
	// A library absent from the configuration performs real calls even
	// while a different library is patched in the same run.
	cfg := Config{
		"boto3": ServiceMocks{
			"cloudwatch": OperationMocks{
				"GetMetricData": InlineResponse("mocked"),
			},
		},
	}

	base := &fakeFactory{}
	registry := NewRegistry(base)
	require.NoError(t, registry.Patch(cfg, ""))

	mocked, err := registry.NewClient("boto3", "cloudwatch")
	require.NoError(t, err)
	got, err := mocked.Call(context.Background(), "GetMetricData", nil)
	require.NoError(t, err)
	assert.Equal(t, "mocked", got)

	real, err := registry.NewClient("requests", "http")
	require.NoError(t, err)
	got, err = real.Call(context.Background(), "Get", nil)
	require.NoError(t, err)
	assert.Equal(t, "real:requests/http/Get", got)
	assert.Equal(t, []string{"requests/http"}, base.requested)
}

func TestRegistryUnlistedServicePassesThrough(t *testing.T) {
	cfg := Config{
		"boto3": ServiceMocks{
			"cloudwatch": OperationMocks{
				"GetMetricData": InlineResponse("mocked"),
			},
		},
	}

	base := &fakeFactory{}
	registry := NewRegistry(base)
	require.NoError(t, registry.Patch(cfg, ""))

	client, err := registry.NewClient("boto3", "s3")
	require.NoError(t, err)
	got, err := client.Call(context.Background(), "GetObject", nil)
	require.NoError(t, err)
	assert.Equal(t, "real:boto3/s3/GetObject", got)
}

func TestRegistryUnpatchRestoresPassthrough(t *testing.T) {
	cfg := Config{
		"boto3": ServiceMocks{
			"cloudwatch": OperationMocks{
				"GetMetricData": InlineResponse("mocked"),
			},
		},
	}

	base := &fakeFactory{}
	registry := NewRegistry(base)
	require.NoError(t, registry.Patch(cfg, ""))
	assert.True(t, registry.IsPatched())

	registry.Unpatch()
	assert.False(t, registry.IsPatched())

	client, err := registry.NewClient("boto3", "cloudwatch")
	require.NoError(t, err)
	got, err := client.Call(context.Background(), "GetMetricData", nil)
	require.NoError(t, err)
	assert.Equal(t, "real:boto3/cloudwatch/GetMetricData", got)

	// Unpatching twice is safe.
	registry.Unpatch()
}

func TestRegistryRepatchReplacesHandlers(t *testing.T) {
	base := &fakeFactory{}
	registry := NewRegistry(base)

	first := Config{
		"boto3": ServiceMocks{
			"cloudwatch": OperationMocks{"GetMetricData": InlineResponse("first")},
		},
	}
	second := Config{
		"boto3": ServiceMocks{
			"cloudwatch": OperationMocks{"GetMetricData": InlineResponse("second")},
		},
	}

	require.NoError(t, registry.Patch(first, ""))
	require.NoError(t, registry.Patch(second, ""))

	client, err := registry.NewClient("boto3", "cloudwatch")
	require.NoError(t, err)
	got, err := client.Call(context.Background(), "GetMetricData", nil)
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestPatchFailsFastOnMissingFixture(t *testing.T) {
	cfg := Config{
		"boto3": ServiceMocks{
			"application-signals": OperationMocks{
				"ListServices": FixtureResponse("does-not-exist.json"),
			},
		},
	}

	registry := NewRegistry(&fakeFactory{})
	err := registry.Patch(cfg, t.TempDir())
	require.Error(t, err)

	notFound := &FixtureNotFoundError{}
	assert.ErrorAs(t, err, &notFound)
	assert.False(t, registry.IsPatched())
}

func TestResolveFixtureFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "services.json"), []byte(`{"services": ["api"]}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.txt"), []byte("enable the agent"), 0644))

	tt := map[string]struct {
		response Response
		expected any
	}{
		"json fixture is parsed": {
			response: FixtureResponse("services.json"),
			expected: map[string]any{"services": []any{"api"}},
		},
		"text fixture is returned verbatim": {
			response: FixtureResponse("guide.txt"),
			expected: "enable the agent",
		},
		"inline data is returned as-is": {
			response: InlineResponse(map[string]any{"a": float64(1)}),
			expected: map[string]any{"a": float64(1)},
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			got, err := ResolveFixture(tc.response, dir)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestResolveFixtureMissingFile(t *testing.T) {
	_, err := ResolveFixture(FixtureResponse("missing.json"), t.TempDir())
	require.Error(t, err)

	notFound := &FixtureNotFoundError{}
	require.True(t, errors.As(err, &notFound))
}

func TestDescriptorRoundTrip(t *testing.T) {
	descriptor := &Descriptor{
		BasePath: "/fixtures",
		Mocks: Config{
			"boto3": ServiceMocks{
				"cloudwatch": OperationMocks{
					"GetMetricData": SequenceResponse(
						InlineResponse(map[string]any{"a": float64(1)}),
						FixtureResponse("second.json"),
					),
					"ListMetrics": InlineResponse("none"),
				},
				"application-signals": OperationMocks{
					"ListServices": FixtureResponse("services.json"),
				},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "mocks.json")
	require.NoError(t, descriptor.ToFile(path))

	got, err := DescriptorFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, descriptor, got)
}

func TestResponseUnmarshalShapes(t *testing.T) {
	tt := map[string]struct {
		raw       string
		expected  Response
		expectErr bool
	}{
		"object becomes inline": {
			raw:      `{"a": 1}`,
			expected: InlineResponse(map[string]any{"a": float64(1)}),
		},
		"json path becomes fixture ref": {
			raw:      `"services.json"`,
			expected: FixtureResponse("services.json"),
		},
		"plain string stays inline": {
			raw:      `"not a fixture"`,
			expected: InlineResponse("not a fixture"),
		},
		"array becomes sequence": {
			raw: `[{"a": 1}, "next.json"]`,
			expected: SequenceResponse(
				InlineResponse(map[string]any{"a": float64(1)}),
				FixtureResponse("next.json"),
			),
		},
		"nested sequence is rejected": {
			raw:       `[[{"a": 1}]]`,
			expectErr: true,
		},
		"empty sequence is rejected": {
			raw:       `[]`,
			expectErr: true,
		},
	}

	for tn, tc := range tt {
		t.Run(tn, func(t *testing.T) {
			var got Response
			err := json.Unmarshal([]byte(tc.raw), &got)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestFromEnv(t *testing.T) {
	dir := t.TempDir()
	descriptor := &Descriptor{
		BasePath: dir,
		Mocks: Config{
			"boto3": ServiceMocks{
				"cloudwatch": OperationMocks{"GetMetricData": InlineResponse("data")},
			},
		},
	}
	path := filepath.Join(dir, "mocks.json")
	require.NoError(t, descriptor.ToFile(path))

	t.Run("descriptor configured", func(t *testing.T) {
		t.Setenv(EnvMockFile, path)

		registry, err := FromEnv(&fakeFactory{})
		require.NoError(t, err)
		assert.True(t, registry.IsPatched())
	})

	t.Run("no descriptor means no patch", func(t *testing.T) {
		t.Setenv(EnvMockFile, "")

		registry, err := FromEnv(&fakeFactory{})
		require.NoError(t, err)
		assert.False(t, registry.IsPatched())
	})
}
