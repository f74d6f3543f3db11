package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// ============================================================
// ControlGate implementation: system_settings via PostgREST
// ============================================================

const maintenanceKey = "maintenance_mode"

type settingRow struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// IsPaused reads the maintenance flag. A missing row means not paused.
// Read-through on every call: the gate is a single shared scalar and
// the engine must see the operator's last write.
func (c *Client) IsPaused(ctx context.Context) (bool, error) {
	ctx, span := tracer.Start(ctx, "Supabase.IsPaused")
	defer span.End()

	path := fmt.Sprintf("system_settings?key=eq.%s&limit=1", maintenanceKey)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return false, err
	}
	if body == nil || string(body) == "[]" {
		return false, nil
	}

	var rows []settingRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return false, fmt.Errorf("decode maintenance setting: %w", err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	return rows[0].Value == "true", nil
}

// SetPaused writes the maintenance flag. Last-write-wins; the row is
// created on first use. Never auto-resets.
func (c *Client) SetPaused(ctx context.Context, paused bool) error {
	ctx, span := tracer.Start(ctx, "Supabase.SetPaused")
	defer span.End()

	value := "false"
	if paused {
		value = "true"
	}

	path := fmt.Sprintf("system_settings?key=eq.%s", maintenanceKey)
	n, err := c.doPatchCount(ctx, path, map[string]any{"value": value})
	if err != nil {
		return err
	}
	if n == 0 {
		_, err = c.doPost(ctx, "system_settings", map[string]any{
			"key":   maintenanceKey,
			"value": value,
		})
	}
	return err
}
