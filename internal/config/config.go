// Package config loads the optional HCL file describing which item to upload
// and which credentials to use. Environment variables are available to the
// file as attributes of the `env` object, e.g. `env.CWS_CLIENT_SECRET`.
package config

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/cwspublish/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
)

// File is the decoded content of a config file. Both blocks are optional.
type File struct {
	Credentials *Credentials `hcl:"credentials,block"`
	Item        *Item        `hcl:"item,block"`
}

// Credentials holds the OAuth2 client and refresh token.
type Credentials struct {
	ClientID     string `hcl:"client_id,optional"`
	ClientSecret string `hcl:"client_secret,optional"`
	RefreshToken string `hcl:"refresh_token,optional"`
}

// Item describes the store item and the archive to upload for it.
type Item struct {
	ID     string `hcl:"id,optional"`
	Source string `hcl:"source,optional"`
	Target string `hcl:"target,optional"`
}

// Load parses the HCL file at path. environ is a list of KEY=VALUE pairs, as
// returned by os.Environ. A relative item source is resolved against the
// directory of the file.
func Load(ctx context.Context, path string, environ []string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading config file.", "path", path)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, diags)
	}

	var file File
	diags = gohcl.DecodeBody(hclFile.Body, EvalContext(environ), &file)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, diags)
	}

	if file.Item != nil && file.Item.Source != "" && !filepath.IsAbs(file.Item.Source) {
		file.Item.Source = filepath.Join(filepath.Dir(path), file.Item.Source)
	}

	logger.Debug("Config file loaded.", "has_credentials", file.Credentials != nil, "has_item", file.Item != nil)
	return &file, nil
}

// EvalContext exposes environ as the `env` object.
func EvalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		vars[key] = cty.StringVal(value)
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}
