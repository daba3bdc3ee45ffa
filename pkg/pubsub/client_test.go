package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func TestResourceName(t *testing.T) {
	cases := []struct {
		name, project, kind, in, want string
	}{
		{"short topic", "shop", "topics", "order-events", "projects/shop/topics/order-events"},
		{"full topic passes through", "shop", "topics", "projects/other/topics/x", "projects/other/topics/x"},
		{"short subscription", "shop", "subscriptions", " orders-sub ", "projects/shop/subscriptions/orders-sub"},
		{"blank", "shop", "topics", "  ", ""},
		{"missing project", "", "topics", "order-events", ""},
		{"wrong kind is expanded", "shop", "topics", "projects/shop/subscriptions/x", "projects/shop/topics/projects/shop/subscriptions/x"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := resourceName(tc.project, tc.kind, tc.in); got != tc.want {
				t.Fatalf("resourceName = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestNewClientValidatesConfig(t *testing.T) {
	ctx := context.Background()
	if _, err := NewClient(ctx, config.GCPConfig{}, config.PubSubConfig{OrdersTopic: "t"}, nil); err != errProjectIDRequired {
		t.Fatalf("expected project id error, got %v", err)
	}
	if _, err := NewClient(ctx, config.GCPConfig{ProjectID: "p"}, config.PubSubConfig{}, nil); err != errTopicRequired {
		t.Fatalf("expected topic error, got %v", err)
	}
}

func TestNilClient(t *testing.T) {
	var c *Client
	if err := c.Ping(context.Background()); err != errNotInitialized {
		t.Fatalf("expected not initialized, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("close nil client: %v", err)
	}
}
