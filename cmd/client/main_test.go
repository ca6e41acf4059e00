package main

import (
	"bytes"
	"strings"
	"testing"

	"InvKeeper/internal/config"
)

func TestWarnInsecure(t *testing.T) {
	cases := map[string]bool{
		"http://localhost:8081":       false,
		"http://127.0.0.1:8081":       false,
		"http://[::1]:8081":           false,
		"https://inventory.local:443": false,
		"http://inventory.local:8081": true,
		"http://10.0.0.5:8081":        true,
	}
	for u, warn := range cases {
		var buf bytes.Buffer
		warnInsecure(&buf, u)
		if got := buf.Len() > 0; got != warn {
			t.Fatalf("%s: warning=%v, want %v (%q)", u, got, warn, buf.String())
		}
	}
}

func TestPrintVersion(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, &config.Config{ServerURL: "https://inv:8443", TokenFile: "/tmp/token"})
	out := buf.String()
	for _, want := range []string{"InvKeeper CLI", "Version: dev", "Server: https://inv:8443", "Token file: /tmp/token"} {
		if !strings.Contains(out, want) {
			t.Fatalf("version output %q missing %q", out, want)
		}
	}
}
