package mcp

import "github.com/mark3labs/mcp-go/mcp"

// registerTools registers all MCP tools with the server
func (s *Server) registerTools() {
	// Health check
	s.mcpServer.AddTool(
		mcp.NewTool("get_health",
			mcp.WithDescription("Check the health status of the voicelink service and device backend connectivity"),
		),
		s.handleGetHealth,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_devices",
			mcp.WithDescription("List the user's devices with their capabilities and properties"),
		),
		s.handleListDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("query_devices",
			mcp.WithDescription("Get the current state of devices. Devices that cannot be reached report an error code."),
			mcp.WithArray("ids",
				mcp.Description("Device IDs to query (default: all devices)"),
				mcp.WithStringItems(),
			),
		),
		s.handleQueryDevices,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("device_action",
			mcp.WithDescription("Change one capability of a device, e.g. type range, instance brightness, value 50"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID"),
			),
			mcp.WithString("type",
				mcp.Required(),
				mcp.Description("Capability type, with or without the devices.capabilities. prefix (on_off, color_setting, mode, range, toggle)"),
			),
			mcp.WithString("instance",
				mcp.Required(),
				mcp.Description("Capability instance (e.g. on, brightness, rgb, program)"),
			),
			mcp.WithString("value",
				mcp.Required(),
				mcp.Description("New value as JSON (e.g. true, 50, \"eco\")"),
			),
			mcp.WithBoolean("relative",
				mcp.Description("Add value to the current value instead of replacing it (default false)"),
			),
		),
		s.handleDeviceAction,
	)

	// Convenience wrappers over on_off
	s.mcpServer.AddTool(
		mcp.NewTool("turn_on",
			mcp.WithDescription("Turn on a device"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID"),
			),
		),
		s.handleTurnOn,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("turn_off",
			mcp.WithDescription("Turn off a device"),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("Device ID"),
			),
		),
		s.handleTurnOff,
	)
}
