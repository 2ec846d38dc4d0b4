package service

import (
	calculatorv1 "github.com/louisbranch/tally/internal/api/calculator/v1"
	"github.com/louisbranch/tally/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerCalculatorTools(mcpServer *mcp.Server, client calculatorv1.CalculatorServiceClient, sessions *domain.SessionSource, notify domain.ResourceUpdateNotifier) {
	mcp.AddTool(mcpServer, domain.PressTool(), domain.PressHandler(client, sessions, notify))
	mcp.AddTool(mcpServer, domain.InputTool(), domain.InputHandler(client, sessions, notify))
	mcp.AddTool(mcpServer, domain.DisplayTool(), domain.DisplayHandler(client, sessions))
	mcp.AddTool(mcpServer, domain.ResetTool(), domain.ResetHandler(client, sessions, notify))
}

func registerHistoryTools(mcpServer *mcp.Server, client calculatorv1.CalculatorServiceClient, sessions *domain.SessionSource, notify domain.ResourceUpdateNotifier) {
	mcp.AddTool(mcpServer, domain.HistoryTool(), domain.HistoryHandler(client, sessions))
	mcp.AddTool(mcpServer, domain.RestoreTool(), domain.RestoreHandler(client, sessions, notify))
	mcp.AddTool(mcpServer, domain.ClearHistoryTool(), domain.ClearHistoryHandler(client, sessions, notify))
}

// registerHistoryResources registers the readable calculator history.
func registerHistoryResources(mcpServer *mcp.Server, client calculatorv1.CalculatorServiceClient, sessions *domain.SessionSource) {
	mcpServer.AddResource(domain.HistoryResource(), domain.HistoryResourceHandler(client, sessions))
}
