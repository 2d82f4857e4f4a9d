package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		allowedFlags []string
		want         []string
	}{
		{
			name:         "short flag with separate value",
			args:         []string{"-c", "conf.json", "-a", ":5000"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"-c", "conf.json"},
		},
		{
			name:         "double dash spelling with equals",
			args:         []string{"--config=alt.json", "-a", ":5000"},
			allowedFlags: []string{"-c", "-config"},
			want:         []string{"--config=alt.json"},
		},
		{
			name:         "unknown flags ignored",
			args:         []string{"-x", "1", "--y=2", "positional"},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
		{
			name:         "flag without value at end is kept",
			args:         []string{"-c"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c"},
		},
		{
			name:         "next dash token is not a value",
			args:         []string{"-c", "-d", "memory://"},
			allowedFlags: []string{"-c", "-d"},
			want:         []string{"-c", "-d", "memory://"},
		},
		{
			name:         "repeated flag preserved in order",
			args:         []string{"-c", "one.json", "-c", "two.json"},
			allowedFlags: []string{"-c"},
			want:         []string{"-c", "one.json", "-c", "two.json"},
		},
		{
			name:         "stops at terminator",
			args:         []string{"-d", "memory://", "--", "-c", "x.json"},
			allowedFlags: []string{"-c", "-d"},
			want:         []string{"-d", "memory://"},
		},
		{
			name:         "empty args",
			args:         []string{},
			allowedFlags: []string{"-c"},
			want:         []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowedFlags))
		})
	}
}

func TestPositional(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		bools []string
		want  []string
	}{
		{name: "after flag value", args: []string{"-d", "memory://", "alice"}, want: []string{"alice"}},
		{name: "after equals flag", args: []string{"--config=x.json", "bob"}, want: []string{"bob"}},
		{name: "bool flag takes no value", args: []string{"-v", "carol"}, bools: []string{"-v"}, want: []string{"carol"}},
		{name: "terminator", args: []string{"-d", "x", "--", "-dash-name"}, want: []string{"-dash-name"}},
		{name: "only flags", args: []string{"-d", "memory://"}, want: nil},
		{name: "nil", args: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Positional(tt.args, tt.bools...))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "/path/short.json", ConfigFileFlag([]string{"-c", "/path/short.json"}))
	assert.Equal(t, "/path/long.json", ConfigFileFlag([]string{"-config", "/path/long.json"}))
	assert.Equal(t, "/path/eq.json", ConfigFileFlag([]string{"-a", ":5000", "--config=/path/eq.json"}))
	assert.Empty(t, ConfigFileFlag([]string{"-a", ":5000"}))
	assert.Equal(t, "/path/2.json", ConfigFileFlag([]string{"-c", "/path/1.json", "-config", "/path/2.json"}))
}
