package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

// maxConcurrent bounds how many plugins run at once for one event.
const maxConcurrent = 4

// Notifier fans an event out to every subscribed plugin.
type Notifier struct {
	manager  *Manager
	executor *Executor
}

// NewNotifier creates a Notifier over the plugins of manager.
func NewNotifier(manager *Manager, executor *Executor) *Notifier {
	return &Notifier{manager: manager, executor: executor}
}

// Notify marshals record and sends it to each plugin subscribed to event.
// All plugins run even if some fail; the first failure is returned.
func (n *Notifier) Notify(ctx context.Context, event string, record any) error {
	subs := n.manager.Subscribers(event)
	if len(subs) == 0 {
		return nil
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", event, err)
	}
	req := &Request{Event: event, Record: payload}

	var g errgroup.Group
	g.SetLimit(maxConcurrent)
	for _, p := range subs {
		g.Go(func() error {
			resp, err := n.executor.Execute(ctx, p, req)
			if err != nil {
				log.Printf("Plugin %s failed on %s: %v", p.Manifest.Name, event, err)
				return err
			}
			if !resp.Success {
				log.Printf("Plugin %s rejected %s: %s", p.Manifest.Name, event, resp.Error)
				return fmt.Errorf("plugin %s: %s", p.Manifest.Name, resp.Error)
			}
			return nil
		})
	}
	return g.Wait()
}
