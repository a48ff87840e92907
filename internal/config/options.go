package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/chevalvert/wipmap-generate/pkg/wipmap"
)

// FetchOptions downloads the options document at src into dir and returns
// its local path. src is any go-getter source: a path, an http(s) URL, a
// git or s3 address.
func FetchOptions(ctx context.Context, src, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	dst := filepath.Join(dir, "options.json")
	client := &get.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: get.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("fetch options %s: %w", src, err)
	}
	return dst, nil
}

// LoadOptions returns the default options when src is empty, and otherwise
// fetches src into dir and decodes it on top of the defaults.
func LoadOptions(ctx context.Context, src, dir string) (wipmap.Options, error) {
	if src == "" {
		return wipmap.DefaultOptions(), nil
	}
	path, err := FetchOptions(ctx, src, dir)
	if err != nil {
		return wipmap.Options{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return wipmap.Options{}, fmt.Errorf("open options: %w", err)
	}
	defer f.Close()

	opts, err := wipmap.LoadOptions(f)
	if err != nil {
		return wipmap.Options{}, fmt.Errorf("load options %s: %w", src, err)
	}
	return opts, nil
}
