package raw

import "testing"

func TestConfGet(t *testing.T) {
	t.Setenv("AFS_HOST", " search.example.net ")
	t.Setenv("LOG_FORMAT", " json ")

	root := New()
	afs := root.Prefix("AFS_")

	tests := []struct {
		name string
		conf Conf
		key  string
		def  string
		want string
	}{
		{name: "root lookup", conf: root, key: "LOG_FORMAT", def: "x", want: "json"},
		{name: "prefixed hit", conf: afs, key: "HOST", def: "x", want: "search.example.net"},
		{name: "missing returns default", conf: afs, key: "MISSING", def: "defv", want: "defv"},
		{name: "nested prefix", conf: root.Prefix("AF").Prefix("S_"), key: "HOST", def: "", want: "search.example.net"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.conf.Get(tt.key, tt.def); got != tt.want {
				t.Fatalf("Get(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestConfLookupBlank(t *testing.T) {
	t.Setenv("AFS_BLANK", "   ")
	if v, ok := New().Prefix("AFS_").Lookup("BLANK"); ok || v != "" {
		t.Fatalf("Lookup(blank) = %q, %v", v, ok)
	}
}

func TestConfGetBool(t *testing.T) {
	log := New().Prefix("LOG_")
	t.Setenv("LOG_T1", "true")
	t.Setenv("LOG_T2", "1")
	t.Setenv("LOG_T3", "YES")
	t.Setenv("LOG_F1", "false")
	t.Setenv("LOG_F2", "nope")

	tests := []struct {
		key  string
		def  bool
		want bool
	}{
		{"T1", false, true},
		{"T2", false, true},
		{"T3", false, true},
		{"F1", true, false},
		{"F2", true, false},
		{"UNSET", true, true},
		{"UNSET", false, false},
	}
	for _, tt := range tests {
		if got := log.GetBool(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetBool(%q, %v) = %v, want %v", tt.key, tt.def, got, tt.want)
		}
	}
}

func TestConfGetInt(t *testing.T) {
	log := New().Prefix("LOG_")
	t.Setenv("LOG_SAMPLE_EVERY", "5")
	t.Setenv("LOG_NEG", "-3")
	t.Setenv("LOG_BAD", "5x")

	tests := []struct {
		key  string
		def  int
		want int
	}{
		{"SAMPLE_EVERY", 0, 5},
		{"NEG", 7, 7},
		{"BAD", 7, 7},
		{"UNSET", 9, 9},
	}
	for _, tt := range tests {
		if got := log.GetInt(tt.key, tt.def); got != tt.want {
			t.Fatalf("GetInt(%q) = %d, want %d", tt.key, got, tt.want)
		}
	}
}
