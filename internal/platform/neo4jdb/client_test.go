package neo4jdb

import (
	"context"
	"testing"

	"github.com/yungbote/continuity-backend/internal/platform/logger"
)

func TestNewWithoutURIDisablesGraph(t *testing.T) {
	c, err := New(logger.Nop(), Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c != nil {
		t.Fatalf("expected nil client when URI is empty")
	}
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close on nil client: %v", err)
	}
}

func TestNewRequiresLogger(t *testing.T) {
	if _, err := New(nil, Options{URI: "bolt://localhost:7687"}); err == nil {
		t.Fatalf("expected error without logger")
	}
}

func TestNilClientHelpers(t *testing.T) {
	var c *Client
	c.RunBestEffort(context.Background(), "RETURN 1")
	if err := c.Write(context.Background(), nil); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
}
