package cmd

import (
	"testing"
)

func TestServeCommandFlags(t *testing.T) {
	tests := []struct {
		name     string
		defValue string
	}{
		{name: "http-addr", defValue: ":5000"},
		{name: "db-path", defValue: "calbridge.db"},
		{name: "frontend-url", defValue: "http://localhost:3000"},
		{name: "metrics-enabled", defValue: "true"},
		{name: "metrics-addr", defValue: ":9090"},
	}

	cmd := newServeCmd()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("flag %q not registered", tt.name)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("flag %q default = %q, want %q", tt.name, flag.DefValue, tt.defValue)
			}
		})
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	for _, want := range []string{"serve", "version"} {
		found := false
		for _, c := range rootCmd.Commands() {
			if c.Name() == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", want)
		}
	}
}

func TestSetVersion(t *testing.T) {
	defer SetVersion("dev")

	SetVersion("1.2.3")
	if rootCmd.Version != "1.2.3" {
		t.Errorf("rootCmd.Version = %q, want %q", rootCmd.Version, "1.2.3")
	}
	if version != "1.2.3" {
		t.Errorf("version = %q, want %q", version, "1.2.3")
	}
}
