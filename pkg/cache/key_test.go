package cache

import (
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "portal with trailing slash",
			key:  Key{Portal: "https://sigabpre.example.org/portal/", Username: "editor"},
			want: "arcgis:token:sigabpre.example.org/portal:editor",
		},
		{
			name: "host is lower cased",
			key:  Key{Portal: "https://SIGABDEV.Example.org/portal", Username: "editor"},
			want: "arcgis:token:sigabdev.example.org/portal:editor",
		},
		{
			name: "scheme does not matter",
			key:  Key{Portal: "http://sigabpre.example.org/portal/", Username: "editor"},
			want: "arcgis:token:sigabpre.example.org/portal:editor",
		},
		{
			name: "not a url",
			key:  Key{Portal: "/local/portal/", Username: "viewer"},
			want: "arcgis:token:local/portal:viewer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_String_DistinctUsers(t *testing.T) {
	a := Key{Portal: "https://host/portal/", Username: "a"}
	b := Key{Portal: "https://host/portal/", Username: "b"}
	if a.String() == b.String() {
		t.Errorf("keys for different users collide: %q", a.String())
	}
}
