// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"errors"
	"strings"
	"testing"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool   // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool   // "bin arg1 arg2" -> whether RunSilent succeeds
	outputs       map[string]string // "bin arg1 arg2" -> RunOutput stdout
	silentCalls   []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	m.silentCalls = append(m.silentCalls, key)
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunOutput(name string, args ...string) (string, error) {
	key := name + " " + strings.Join(args, " ")
	out, ok := m.outputs[key]
	if !ok {
		return "", errors.New("command failed: " + key)
	}
	return out, nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	tests := []struct {
		name    string
		mkRT    func(*mockExecutor) Runtime
		image   string
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name:  "docker image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image: "crawl4ai:latest",
			cmds:  map[string]bool{"docker image inspect crawl4ai:latest": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			image:   "crawl4ai:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
		{
			name:  "podman image exists",
			mkRT:  func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image: "crawl4ai:latest",
			cmds:  map[string]bool{"podman image exists crawl4ai:latest": true},
		},
		{
			name:    "podman image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			image:   "crawl4ai:latest",
			cmds:    map[string]bool{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{runnableCmds: tt.cmds}
			rt := tt.mkRT(exec)
			err := rt.ImageExists(tt.image)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.image) {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestStartDetached(t *testing.T) {
	wantCmd := "docker run -d --rm --name prodscout-crawl -p 11235:11235 crawl4ai:latest"
	exec := &mockExecutor{runnableCmds: map[string]bool{wantCmd: true}}
	rt := newDockerRuntime(exec)

	if err := rt.StartDetached("prodscout-crawl", "crawl4ai:latest", 11235, 11235); err != nil {
		t.Fatalf("StartDetached: %v", err)
	}
	if len(exec.silentCalls) != 1 || exec.silentCalls[0] != wantCmd {
		t.Errorf("calls = %v, want [%s]", exec.silentCalls, wantCmd)
	}
}

func TestStartDetachedFailure(t *testing.T) {
	exec := &mockExecutor{}
	rt := newDockerRuntime(exec)
	err := rt.StartDetached("prodscout-crawl", "crawl4ai:latest", 11235, 11235)
	if err == nil || !strings.Contains(err.Error(), "prodscout-crawl") {
		t.Errorf("error = %v, want the container named", err)
	}
}

func TestStop(t *testing.T) {
	exec := &mockExecutor{runnableCmds: map[string]bool{"podman stop prodscout-crawl": true}}
	rt := newPodmanRuntime(exec)
	if err := rt.Stop("prodscout-crawl"); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := rt.Stop("absent"); err == nil {
		t.Error("Stop of an absent container succeeded")
	}
}

func TestRunning(t *testing.T) {
	psCmd := "docker ps --filter name=prodscout-crawl --format {{.Names}}"
	tests := []struct {
		name    string
		output  string
		want    bool
		wantErr bool
	}{
		{name: "up", output: "prodscout-crawl\n", want: true},
		{name: "down", output: "\n", want: false},
		{name: "prefix match is not a match", output: "prodscout-crawl-old\n", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{outputs: map[string]string{psCmd: tt.output}}
			rt := newDockerRuntime(exec)
			got, err := rt.Running("prodscout-crawl")
			if err != nil {
				t.Fatalf("Running: %v", err)
			}
			if got != tt.want {
				t.Errorf("Running() = %v, want %v", got, tt.want)
			}
		})
	}

	exec := &mockExecutor{}
	rt := newDockerRuntime(exec)
	if _, err := rt.Running("prodscout-crawl"); err == nil {
		t.Error("Running with a failing runtime succeeded")
	}
}

func TestPull(t *testing.T) {
	exec := &mockExecutor{runnableCmds: map[string]bool{"docker pull crawl4ai:latest": true}}
	rt := newDockerRuntime(exec)
	if err := rt.Pull("crawl4ai:latest"); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if err := rt.Pull("missing:latest"); err == nil {
		t.Error("Pull of an unknown image succeeded")
	}
}

func TestRuntimeName(t *testing.T) {
	exec := &mockExecutor{}
	docker := newDockerRuntime(exec)
	if docker.Name() != "docker" {
		t.Errorf("docker runtime name = %q, want %q", docker.Name(), "docker")
	}
	podman := newPodmanRuntime(exec)
	if podman.Name() != "podman" {
		t.Errorf("podman runtime name = %q, want %q", podman.Name(), "podman")
	}
}
