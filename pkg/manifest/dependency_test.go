package manifest

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleManifest() *Manifest {
	return &Manifest{
		Name: "App",
		Dependencies: []Dependency{
			NewRemoteDependency("https://github.com/apple/swift-log.git", "1.5.0"),
			NewLocalDependency("../Utils"),
		},
		Targets: []Target{
			{Name: "App", Type: TargetExecutable, Dependencies: []string{"Utils", "swift-log"}},
			{Name: "Core", Type: TargetLibrary, Dependencies: []string{"Utils"}},
			{Name: "AppTests", Type: TargetTest, Dependencies: []string{"App"}},
		},
	}
}

func TestConstructors(t *testing.T) {
	r := NewRemoteDependency(" https://github.com/apple/swift-log.git ", "1.5.0")
	if r.Name != "swift-log" || r.URL != "https://github.com/apple/swift-log.git" || r.Path != "" || !r.IsRemote() {
		t.Errorf("NewRemoteDependency = %+v", r)
	}
	l := NewLocalDependency("../Packages/Utils/")
	if l.Name != "Utils" || l.URL != "" || l.Path != "../Packages/Utils/" || l.IsRemote() {
		t.Errorf("NewLocalDependency = %+v", l)
	}
}

func TestFindDependency(t *testing.T) {
	m := sampleManifest()
	tests := []struct {
		identifier string
		want       string
		ok         bool
	}{
		{"swift-log", "swift-log", true},
		{"https://github.com/apple/swift-log.git", "swift-log", true},
		{"../Utils", "Utils", true},
		{"Utils", "Utils", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		d, ok := m.FindDependency(tt.identifier)
		if ok != tt.ok || d.Name != tt.want {
			t.Errorf("FindDependency(%q) = %q, %v; want %q, %v", tt.identifier, d.Name, ok, tt.want, tt.ok)
		}
	}
}

func TestDependencyExists(t *testing.T) {
	m := sampleManifest()
	tests := []struct {
		name string
		dep  Dependency
		want bool
	}{
		{"same url", Dependency{URL: "https://github.com/apple/swift-log.git"}, true},
		{"different url same name", Dependency{Name: "swift-log", URL: "https://example.com/fork/swift-log.git"}, false},
		{"same path", Dependency{Path: "../Utils"}, true},
		{"name only", Dependency{Name: "Utils"}, true},
		{"unknown", Dependency{Name: "nope"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.DependencyExists(tt.dep); got != tt.want {
				t.Errorf("DependencyExists = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUsage(t *testing.T) {
	m := sampleManifest()
	if diff := cmp.Diff([]string{"App", "Core"}, m.TargetsUsingDependency("Utils")); diff != "" {
		t.Errorf("TargetsUsingDependency mismatch (-want +got):\n%s", diff)
	}
	if !m.IsDependencyUsed("swift-log") {
		t.Error("swift-log should be used")
	}
	if m.IsDependencyUsed("swift-nio") {
		t.Error("swift-nio should not be used")
	}
	if !m.HasExecutable() || !m.HasTestTarget() {
		t.Error("expected executable and test targets")
	}
	if diff := cmp.Diff([]string{"App", "Core"}, m.TargetNames(false)); diff != "" {
		t.Errorf("TargetNames mismatch (-want +got):\n%s", diff)
	}
	if got := len(m.LocalDependencies()); got != 1 {
		t.Errorf("LocalDependencies = %d, want 1", got)
	}
}
