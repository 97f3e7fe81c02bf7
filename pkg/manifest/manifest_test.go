package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleTOML = `
[server]
fallback_status = 404

[[handler]]
type = "rest"
method = "get"
path = "status"
callback = "status"

[[handler]]
type = "rest"
path = "/echo"
callback = "echo"
ignore_method = true
codec = "form"
  [handler.guard]
  require_auth = true
  roles = ["ops"]

[[handler]]
type = "static"
name = "theme"
base = "theme"
source = "dir:./web"
send_404 = false

[[handler]]
type = "static"
base = "default"
source = "bundle:assets"
strict_methods = true
`

const sampleYAML = `
handler:
  - type: rest
    path: /status
    callback: status
  - type: static
    source: bundle:assets
    send_404: false
`

func TestParseTOML(t *testing.T) {
	cfg, err := Parse([]byte(sampleTOML), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Handlers) != 4 {
		t.Fatalf("handlers = %d", len(cfg.Handlers))
	}

	status := cfg.Handlers[0]
	if status.Method != "GET" || status.Path != "/status" || status.Name != "GET /status" {
		t.Errorf("status = %+v", status)
	}

	echo := cfg.Handlers[1]
	if !echo.IgnoreMethod || echo.Codec != "form" || echo.Name != "ANY /echo" {
		t.Errorf("echo = %+v", echo)
	}
	if !echo.Guard.RequireAuth || len(echo.Guard.Roles) != 1 {
		t.Errorf("echo guard = %+v", echo.Guard)
	}

	theme := cfg.Handlers[2]
	if theme.SendNotFound() || theme.Prefix != "/" {
		t.Errorf("theme = %+v", theme)
	}
	if kind, arg := theme.SourceParts(); kind != SourceDir || arg != "./web" {
		t.Errorf("source parts = %q %q", kind, arg)
	}

	def := cfg.Handlers[3]
	if !def.SendNotFound() || !def.StrictMethods || def.Name != "static#3" {
		t.Errorf("default = %+v", def)
	}
}

func TestParseYAML(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.FallbackStatus != 404 {
		t.Errorf("fallback = %d", cfg.Server.FallbackStatus)
	}
	if len(cfg.Handlers) != 2 || cfg.Handlers[1].SendNotFound() {
		t.Fatalf("handlers = %+v", cfg.Handlers)
	}
	if _, err := Parse([]byte("handler:\n  - type: rest\n    bogus: 1\n"), FormatYAML); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestValidateErrors(t *testing.T) {
	cases := map[string]string{
		"no handlers":    ``,
		"unknown type":   "[[handler]]\ntype = \"proxy\"\n",
		"rest no path":   "[[handler]]\ntype = \"rest\"\ncallback = \"x\"\n",
		"rest no cb":     "[[handler]]\ntype = \"rest\"\npath = \"/x\"\n",
		"bad timeout":    "[[handler]]\ntype = \"rest\"\npath = \"/x\"\ncallback = \"x\"\ntimeout_ms = -1\n",
		"bad codec":      "[[handler]]\ntype = \"rest\"\npath = \"/x\"\ncallback = \"x\"\ncodec = \"xml\"\n",
		"base traversal": "[[handler]]\ntype = \"static\"\nbase = \"../etc\"\nsource = \"dir:.\"\n",
		"bad source":     "[[handler]]\ntype = \"static\"\nsource = \"s3:bucket\"\n",
		"empty source":   "[[handler]]\ntype = \"static\"\nsource = \"dir:\"\n",
		"bad fallback":   "[server]\nfallback_status = 42\n[[handler]]\ntype = \"static\"\nsource = \"dir:.\"\n",
		"dup names":      "[[handler]]\ntype = \"rest\"\npath = \"/x\"\ncallback = \"a\"\n[[handler]]\ntype = \"rest\"\npath = \"/x\"\ncallback = \"b\"\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc), FormatTOML)
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	tomlPath := filepath.Join(dir, "manifest.toml")
	yamlPath := filepath.Join(dir, "manifest.yml")
	if err := os.WriteFile(tomlPath, []byte(sampleTOML), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(yamlPath, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	if cfg, err := Load(tomlPath); err != nil || len(cfg.Handlers) != 4 {
		t.Fatalf("toml: %v %d", err, len(cfg.Handlers))
	}
	if cfg, err := Load(yamlPath); err != nil || len(cfg.Handlers) != 2 {
		t.Fatalf("yaml: %v %d", err, len(cfg.Handlers))
	}
	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil || !strings.Contains(err.Error(), "missing.toml") {
		t.Fatalf("err = %v", err)
	}
}
