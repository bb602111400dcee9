package gateway

import (
	"context"
	"time"

	"misetui/internal/cache"
	"misetui/internal/logging"
)

// Cached wraps a Gateway and memoizes remote version lists and tool details.
// Operations that change the installed set drop the affected detail entries.
type Cached struct {
	Gateway

	versions *cache.LRU[string, []string]
	details  *cache.LRU[string, string]
}

// NewCached wraps inner with caches of the given size and ttl.
func NewCached(inner Gateway, size int, ttl time.Duration) *Cached {
	return &Cached{
		Gateway:  inner,
		versions: cache.NewLRU[string, []string](size, ttl),
		details:  cache.NewLRU[string, string](size, ttl),
	}
}

func (c *Cached) FetchVersions(ctx context.Context, tool string) ([]string, error) {
	if v, ok := c.versions.Get(tool); ok {
		logging.Debug("versions cache hit", "tool", tool)
		return v, nil
	}
	v, err := c.Gateway.FetchVersions(ctx, tool)
	if err != nil {
		return nil, err
	}
	if n := c.versions.Cleanup(); n > 0 {
		logging.Debug("versions cache swept", "expired", n)
	}
	c.versions.Set(tool, v)
	return v, nil
}

func (c *Cached) ToolDetail(ctx context.Context, tool string) (string, error) {
	if d, ok := c.details.Get(tool); ok {
		return d, nil
	}
	d, err := c.Gateway.ToolDetail(ctx, tool)
	if err != nil {
		return "", err
	}
	c.details.Cleanup()
	c.details.Set(tool, d)
	return d, nil
}

func (c *Cached) Install(ctx context.Context, tool, version string) (string, error) {
	c.details.Delete(tool)
	return c.Gateway.Install(ctx, tool, version)
}

func (c *Cached) Uninstall(ctx context.Context, tool, version string) (string, error) {
	c.details.Delete(tool)
	return c.Gateway.Uninstall(ctx, tool, version)
}

func (c *Cached) Upgrade(ctx context.Context, tool string) (string, error) {
	if tool == "" {
		c.details.Clear()
	} else {
		c.details.Delete(tool)
	}
	return c.Gateway.Upgrade(ctx, tool)
}

func (c *Cached) UseGlobal(ctx context.Context, tool, version string) (string, error) {
	c.details.Delete(tool)
	return c.Gateway.UseGlobal(ctx, tool, version)
}

func (c *Cached) Prune(ctx context.Context) (string, error) {
	c.details.Clear()
	return c.Gateway.Prune(ctx)
}
