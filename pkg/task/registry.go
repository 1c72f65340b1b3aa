package task

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// GroupFileSuffix is the naming convention task discovery scans for.
const GroupFileSuffix = "_tasks.yaml"

// Registry is the lookup table of every registered task, built eagerly at
// startup.
type Registry struct {
	mu     sync.RWMutex
	groups map[string]*Group
	tasks  map[string]*Task
}

func NewRegistry() *Registry {
	return &Registry{
		groups: map[string]*Group{},
		tasks:  map[string]*Task{},
	}
}

// RegisterGroup adds a group and all its tasks. Group names and task IDs
// must be unique across the registry.
func (r *Registry) RegisterGroup(group *Group) error {
	if err := group.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := group.Metadata.Name
	if _, exists := r.groups[name]; exists {
		return fmt.Errorf("a task group named %q is already registered", name)
	}

	for _, t := range group.Tasks {
		if _, exists := r.tasks[t.ID]; exists {
			return fmt.Errorf("a task with id %q is already registered", t.ID)
		}
	}

	r.groups[name] = group
	for _, t := range group.Tasks {
		r.tasks[t.ID] = t
	}

	return nil
}

// DiscoverDir scans a directory for task group files matching the
// *_tasks.yaml convention and registers each one. The scan is a plain
// sorted directory walk, evaluated once.
func (r *Registry) DiscoverDir(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+GroupFileSuffix))
	if err != nil {
		return fmt.Errorf("failed to scan %q for task groups: %w", dir, err)
	}
	sort.Strings(matches)

	if len(matches) == 0 {
		return fmt.Errorf("no %s files found in %q", GroupFileSuffix, dir)
	}

	for _, path := range matches {
		if strings.HasPrefix(filepath.Base(path), ".") {
			continue
		}

		group, err := ReadGroupFile(path)
		if err != nil {
			return err
		}
		if err := r.RegisterGroup(group); err != nil {
			return fmt.Errorf("failed to register group from %q: %w", path, err)
		}
	}

	return nil
}

// Groups returns every registered group, sorted by name.
func (r *Registry) Groups() []*Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]*Group, len(names))
	for i, name := range names {
		groups[i] = r.groups[name]
	}
	return groups
}

// Tasks returns every registered task, grouped by sorted group name with
// each group's task order preserved.
func (r *Registry) Tasks() []*Task {
	var tasks []*Task
	for _, group := range r.Groups() {
		tasks = append(tasks, group.Tasks...)
	}
	return tasks
}

// Lookup finds a task by id.
func (r *Registry) Lookup(id string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tasks[id]
	return t, ok
}

// LookupGroup finds a group by name.
func (r *Registry) LookupGroup(name string) (*Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	group, ok := r.groups[name]
	return group, ok
}
