// Package api exposes the simulation to the dashboard: state reads, user
// intents (deploy and stop agents), transaction detail lookups, and a
// websocket stream of live events.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/nexuslabs/nexus-agents/simulation"
)

// Server binds the HTTP surface to a running simulation.
type Server struct {
	sim    *simulation.Simulation
	hub    *Hub
	router *gin.Engine
}

func NewServer(sim *simulation.Simulation, hub *Hub) *Server {
	s := &Server{
		sim:    sim,
		hub:    hub,
		router: gin.Default(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes initializes all API endpoints.
func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.POST("/agents", s.deployAgent)
		api.POST("/agents/:id/stop", s.stopAgent)
		api.GET("/agents", s.listAgents)
		api.GET("/agents/:id", s.getAgent)
		api.GET("/ledger", s.getLedger)
		api.GET("/oracle", s.getOracle)
		api.GET("/hcs", s.getMessages)
		api.GET("/governance/proposal", s.getProposal)
		api.GET("/network/event", s.getNetworkEvent)
		api.GET("/network/stats", s.getStats)
		api.GET("/activity", s.getActivity)
		api.GET("/transactions/:id", s.getTransaction)
	}
	s.router.GET("/ws", s.handleWebSocket)
}

// Run starts the REST API on the given address.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
