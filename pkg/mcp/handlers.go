package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/urmzd/voicelink/pkg/device"
	"github.com/urmzd/voicelink/pkg/device/schema"
	"github.com/urmzd/voicelink/pkg/provider"
)

const capabilityPrefix = "devices.capabilities."

func (s *Server) handleGetHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	backendStatus := "disconnected"
	if s.controller.IsConnected() {
		backendStatus = "connected"
	}

	status := "healthy"
	if backendStatus != "connected" {
		status = "unhealthy"
	}

	out := GetHealthOutput{
		Status:    status,
		Backend:   backendStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleListDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	devices, err := s.provider.Devices(ctx, s.userID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", err)), nil
	}

	infos := make([]DeviceInfo, 0, len(devices))
	for i := range devices {
		infos = append(infos, DeviceToInfo(&devices[i]))
	}

	out := ListDevicesOutput{
		UserID:  s.userID,
		Devices: infos,
		Count:   len(infos),
	}

	return mcp.NewToolResultText(formatJSON(out)), nil
}

func (s *Server) handleQueryDevices(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ids, err := optionalStrings(request, "ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(ids) == 0 {
		devices, err := s.provider.Devices(ctx, s.userID)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list devices: %s", err)), nil
		}
		for _, d := range devices {
			ids = append(ids, d.ID)
		}
	}

	states, err := s.provider.Query(ctx, s.userID, ids)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to query devices: %s", err)), nil
	}

	return mcp.NewToolResultText(formatJSON(QueryDevicesOutput{Devices: states})), nil
}

func (s *Server) handleDeviceAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	capType, err := requiredString(request, "type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	instance, err := requiredString(request, "instance")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	raw, ok := args["value"]
	if !ok || raw == nil {
		return mcp.NewToolResultError(`required parameter "value" is missing`), nil
	}

	state := map[string]any{
		"instance": instance,
		"value":    decodeValue(raw),
	}
	if r, ok := args["relative"].(bool); ok && r {
		state["relative"] = true
	}

	if !strings.HasPrefix(capType, capabilityPrefix) {
		capType = capabilityPrefix + capType
	}

	return s.act(ctx, id, capType, state)
}

func (s *Server) handleTurnOn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.switchDevice(ctx, request, true)
}

func (s *Server) handleTurnOff(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.switchDevice(ctx, request, false)
}

func (s *Server) switchDevice(ctx context.Context, request mcp.CallToolRequest, on bool) (*mcp.CallToolResult, error) {
	id, err := requiredString(request, "id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return s.act(ctx, id, string(device.CapabilityOnOff), map[string]any{"instance": "on", "value": on})
}

// act validates a single capability action the way the webhook does and runs it
func (s *Server) act(ctx context.Context, id, capType string, state map[string]any) (*mcp.CallToolResult, error) {
	body := map[string]any{
		"payload": map[string]any{
			"devices": []any{map[string]any{
				"id": id,
				"capabilities": []any{map[string]any{
					"type":  capType,
					"state": state,
				}},
			}},
		},
	}

	if s.validator != nil {
		if err := s.validator.Validate(schema.ActionRequest, body); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("validation error: %s", err)), nil
		}
	}

	action := provider.CapabilityAction{
		Type: device.CapabilityType(capType),
		State: device.State{
			Instance: state["instance"].(string),
			Value:    state["value"],
		},
	}
	if _, ok := state["relative"]; ok {
		relative := true
		action.State.Relative = &relative
	}

	results, err := s.provider.Action(ctx, s.userID, []provider.ActionRequest{{
		ID:           id,
		Capabilities: []provider.CapabilityAction{action},
	}})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to run action: %s", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("device not found: %s", id)), nil
	}

	return mcp.NewToolResultText(formatJSON(DeviceActionOutput{Devices: results})), nil
}

// --- helpers ---

func requiredString(request mcp.CallToolRequest, key string) (string, error) {
	args := request.GetArguments()
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("required parameter %q is missing", key)
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", fmt.Errorf("parameter %q must be a non-empty string", key)
	}
	return s, nil
}

func optionalStrings(request mcp.CallToolRequest, key string) ([]string, error) {
	v, ok := request.GetArguments()[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter %q must be an array of strings", key)
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok || s == "" {
			return nil, fmt.Errorf("parameter %q must be an array of strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// decodeValue reads a JSON encoded value; anything else is used as is
func decodeValue(raw any) any {
	s, ok := raw.(string)
	if !ok {
		return raw
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

func formatJSON(v any) string {
	b, err := encodeJSON(v)
	if err != nil {
		return fmt.Sprintf(`{"error":"failed to marshal response: %s"}`, err)
	}
	return string(b)
}

func encodeJSON(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}
