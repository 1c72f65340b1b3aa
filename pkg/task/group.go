package task

import (
	"fmt"
	"os"
	"path/filepath"

	"sigs.k8s.io/yaml"

	"github.com/mcpeval/mcpeval/pkg/toolserver"
	"github.com/mcpeval/mcpeval/pkg/util"
)

const KindTaskGroup = "TaskGroup"

// Group is a named collection of tasks sharing a tool server.
type Group struct {
	Metadata GroupMetadata `json:"metadata"`

	// Server overrides the runner's default tool server for every task
	// in the group.
	Server *toolserver.ServerConfig `json:"server,omitempty"`

	Tasks []*Task `json:"tasks"`
}

type GroupMetadata struct {
	Name string `json:"name"`
}

func (g *Group) UnmarshalJSON(data []byte) error {
	type Doppleganger Group

	tmp := (*Doppleganger)(g)
	return util.UnmarshalWithKind(data, tmp, KindTaskGroup)
}

func (g *Group) Validate() error {
	if g.Metadata.Name == "" {
		return fmt.Errorf("task group name must not be empty")
	}
	if len(g.Tasks) == 0 {
		return fmt.Errorf("task group %q must have at least one task", g.Metadata.Name)
	}

	for _, t := range g.Tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task group %q: %w", g.Metadata.Name, err)
		}
	}

	return nil
}

// ReadGroup parses a task group definition. Relative paths in the group are
// resolved against basePath.
func ReadGroup(data []byte, basePath string) (*Group, error) {
	group := &Group{}
	if err := yaml.Unmarshal(data, group); err != nil {
		return nil, err
	}

	for _, t := range group.Tasks {
		resolvePath(&t.FixturesDir, basePath)
		resolvePath(&t.WorkDir, basePath)
		if t.SystemPrompt != nil {
			resolvePath(&t.SystemPrompt.File, basePath)
		}
	}
	if group.Server != nil {
		resolvePath(&group.Server.WorkDir, basePath)
	}

	if err := group.Validate(); err != nil {
		return nil, err
	}

	return group, nil
}

// ReadGroupFile loads a task group from a YAML file, resolving relative
// paths against the file's directory.
func ReadGroupFile(path string) (*Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task group file: %w", err)
	}

	group, err := ReadGroup(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse task group file %q: %w", path, err)
	}

	return group, nil
}

func resolvePath(path *string, basePath string) {
	if *path == "" || filepath.IsAbs(*path) || basePath == "" {
		return
	}
	*path = filepath.Join(basePath, *path)
}
