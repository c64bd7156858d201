package tiercache

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeStrategyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategies.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadStrategies(t *testing.T) {
	path := writeStrategyFile(t, `
domains:
  author:
    l1_ttl: 5m
    l2_ttl: 30m
    l1_max_entries: 500
  markdown:
    l1_ttl: 10m
    l2_ttl: 1h
    l1_max_entries: 300
    l1_max_value_size: 262144
  local-only:
    l1_ttl: 30s
    l1_max_entries: 10
`)

	got, err := LoadStrategies(path)
	if err != nil {
		t.Fatalf("LoadStrategies: %v", err)
	}

	a := got["author"]
	if a.L1TTL != 5*time.Minute || a.L2TTL != 30*time.Minute || a.L1MaxEntries != 500 {
		t.Fatalf("author strategy = %+v", a)
	}
	if got["markdown"].L1MaxValueSize != 262144 {
		t.Fatalf("markdown strategy = %+v", got["markdown"])
	}
	// omitted l2_ttl means the remote tier is off for the domain
	if got["local-only"].L2TTL != 0 {
		t.Fatalf("local-only strategy = %+v", got["local-only"])
	}
}

func TestLoadStrategiesRejectsBadInput(t *testing.T) {
	cases := map[string]string{
		"bad duration": "domains:\n  a:\n    l1_ttl: soon\n",
		"negative ttl": "domains:\n  a:\n    l1_ttl: -5s\n",
		"empty table":  "domains: {}\n",
		"not yaml":     ":\t:::\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadStrategies(writeStrategyFile(t, content)); err == nil {
				t.Fatalf("%s accepted", name)
			}
		})
	}
}

func TestLoadStrategiesMissingFile(t *testing.T) {
	if _, err := LoadStrategies(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestDefaultStrategiesCoverContentDomains(t *testing.T) {
	s := DefaultStrategies()
	for _, d := range []Domain{"author", "article", "article-list", "markdown", "settings"} {
		st, ok := s[d]
		if !ok {
			t.Fatalf("default table missing domain %q", d)
		}
		if st.L1TTL <= 0 || st.L1MaxEntries <= 0 {
			t.Fatalf("domain %q has no usable L1 policy: %+v", d, st)
		}
	}
	if s["markdown"].L1MaxValueSize == 0 {
		t.Fatal("markdown should cap L1 value size")
	}
}
