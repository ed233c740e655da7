package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	config := []string{"-c", "-config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "conf.json", "-l", "catalog.db"}, config, []string{"-c", "conf.json"}},
		{"equals form", []string{"-config=alt.json", "-l", "catalog.db"}, config, []string{"-config=alt.json"}},
		{"order kept across forms", []string{"-config=a.json", "-c", "b.json", "-k", "key"}, config, []string{"-config=a.json", "-c", "b.json"}},
		{"nothing allowed present", []string{"-k", "key", "-v=https://api", "positional"}, config, []string{}},
		{"trailing flag without value", []string{"-c"}, config, []string{"-c"}},
		{"dash token is not a value", []string{"-c", "-d", "postgres://db"}, config, []string{"-c"}},
		{"equals value may start with dash", []string{"-config=-odd.json"}, config, []string{"-config=-odd.json"}},
		{"several allowed flags", []string{"-d", "postgres://db", "-c", "conf.json", "-b", "images"}, []string{"-c", "-d"}, []string{"-d", "postgres://db", "-c", "conf.json"}},
		{"empty", []string{}, config, []string{}},
		{"repeats kept", []string{"-env", "one.env", "-env", "two.env"}, []string{"-env"}, []string{"-env", "one.env", "-env", "two.env"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	orig := os.Args
	os.Args = append([]string{"modcatalog"}, args...)
	t.Cleanup(func() { os.Args = orig })
}

func TestJsonConfigFlags(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"-c", "/etc/modcat.json"}, "/etc/modcat.json"},
		{[]string{"-config", "/etc/long.json"}, "/etc/long.json"},
		{[]string{"-config=/etc/eq.json", "-d", "postgres://x"}, "/etc/eq.json"},
		{[]string{"-c", "/etc/1.json", "-config", "/etc/2.json"}, "/etc/2.json"},
		{[]string{"-k", "key", "-t", "5"}, ""},
	}
	for _, c := range cases {
		withArgs(t, c.args...)
		assert.Equal(t, c.want, JsonConfigFlags(), c.args)
	}
}

func TestEnvFileFlags(t *testing.T) {
	withArgs(t, "-l", "catalog.db", "-env", "/etc/modcat.env")
	assert.Equal(t, "/etc/modcat.env", EnvFileFlags())

	withArgs(t, "-l", "catalog.db")
	assert.Empty(t, EnvFileFlags())
}

func TestLookupString_IgnoresUnknownFlags(t *testing.T) {
	withArgs(t, "-u", "user", "-p", "secret", "-b", "images")
	assert.Equal(t, "images", LookupString("b", "bucket"))
	assert.Empty(t, LookupString("w"))
}
