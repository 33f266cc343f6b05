package discovery

import (
	"errors"
	"reflect"
	"testing"

	"github.com/vulnpipe/vulnpipe/internal/models"
)

func TestDiscoverAllAvailable(t *testing.T) {
	d := New(func(file string) (string, error) {
		return "/usr/bin/" + file, nil
	})

	plan := d.Discover()

	if plan.TotalFound != len(Registry) {
		t.Errorf("total found = %d, want %d", plan.TotalFound, len(Registry))
	}
	if len(plan.Tools) != len(Registry) {
		t.Fatalf("tools = %d, want %d", len(plan.Tools), len(Registry))
	}
	for _, td := range plan.Tools {
		if !td.Available {
			t.Errorf("%s should be available", td.Tool)
		}
		if td.BinaryPath != "/usr/bin/"+td.Binary {
			t.Errorf("%s path = %q", td.Tool, td.BinaryPath)
		}
	}
}

func TestDiscoverNoneAvailable(t *testing.T) {
	d := New(func(string) (string, error) {
		return "", errors.New("not found")
	})

	plan := d.Discover()

	if plan.TotalFound != 0 {
		t.Errorf("total found = %d, want 0", plan.TotalFound)
	}
	if got := plan.AvailableTools(); len(got) != 0 {
		t.Errorf("available tools = %d, want 0", len(got))
	}
	for _, td := range plan.Tools {
		if td.BinaryPath != "" {
			t.Errorf("%s should have no path", td.Tool)
		}
	}
}

func TestDiscoverPartial(t *testing.T) {
	d := New(func(file string) (string, error) {
		if file == "nmap" || file == "nikto" {
			return "/opt/tools/" + file, nil
		}
		return "", errors.New("not found")
	})

	plan := d.Discover()

	if plan.TotalFound != 2 {
		t.Errorf("total found = %d, want 2", plan.TotalFound)
	}
	available := plan.AvailableTools()
	if len(available) != 2 {
		t.Fatalf("available = %d, want 2", len(available))
	}
}

func TestDiscoverDeterministicOrder(t *testing.T) {
	d := New(func(file string) (string, error) {
		return "/usr/bin/" + file, nil
	})

	first := d.Discover()
	second := d.Discover()

	for i := range first.Tools {
		if first.Tools[i].Tool != second.Tools[i].Tool {
			t.Fatalf("order differs at %d: %s vs %s", i, first.Tools[i].Tool, second.Tools[i].Tool)
		}
	}
	for i := 1; i < len(first.Tools); i++ {
		if string(first.Tools[i-1].Tool) > string(first.Tools[i].Tool) {
			t.Errorf("tools not sorted: %s before %s", first.Tools[i-1].Tool, first.Tools[i].Tool)
		}
	}
}

func TestRegistryCoversSupportedTools(t *testing.T) {
	for tool := range models.SupportedTools {
		info, ok := Registry[tool]
		if !ok {
			t.Errorf("no registry entry for %s", tool)
			continue
		}
		if info.Binary == "" {
			t.Errorf("%s has no binary name", tool)
		}
		if info.Timeout <= 0 {
			t.Errorf("%s has no timeout", tool)
		}
	}
}

func TestArgs(t *testing.T) {
	tests := []struct {
		name   string
		info   ToolExecInfo
		target string
		extra  []string
		want   []string
	}{
		{
			name:   "flagged target before base args",
			info:   Registry[models.ToolNuclei],
			target: "http://h/",
			want:   []string{"-u", "http://h/", "-silent", "-jsonl"},
		},
		{
			name:   "positional target after base args",
			info:   Registry[models.ToolNmap],
			target: "10.0.0.5",
			want:   []string{"-Pn", "--top-ports", "100", "10.0.0.5"},
		},
		{
			name:   "extra args appended",
			info:   Registry[models.ToolNikto],
			target: "http://h/",
			extra:  []string{"-Tuning", "1"},
			want:   []string{"-h", "http://h/", "-Tuning", "1"},
		},
		{
			name: "empty target omitted",
			info: Registry[models.ToolSqlmap],
			want: []string{"--batch", "--risk=1", "--level=1", "--random-agent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.info.Args(tt.target, tt.extra)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args() = %v, want %v", got, tt.want)
			}
		})
	}
}
