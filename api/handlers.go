package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type deployRequest struct {
	TaskDescription string `json:"taskDescription" binding:"required"`
}

// deployAgent registers a new agent for the submitted task. The workflow is
// generated asynchronously; the agent comes back in initializing state.
func (s *Server) deployAgent(c *gin.Context) {
	var req deployRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid deployment request"})
		return
	}
	if strings.TrimSpace(req.TaskDescription) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Task description must not be empty"})
		return
	}
	agent := s.sim.DeployAgent(req.TaskDescription)
	c.JSON(http.StatusAccepted, agent)
}

func (s *Server) stopAgent(c *gin.Context) {
	if err := s.sim.StopAgent(c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func (s *Server) listAgents(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Agents())
}

func (s *Server) getAgent(c *gin.Context) {
	agent, ok := s.sim.Agent(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown agent"})
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (s *Server) getLedger(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Ledger())
}

func (s *Server) getOracle(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Oracle())
}

func (s *Server) getMessages(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Messages())
}

func (s *Server) getProposal(c *gin.Context) {
	proposal := s.sim.Proposal()
	if proposal == nil {
		c.JSON(http.StatusOK, gin.H{"proposal": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"proposal": proposal})
}

func (s *Server) getNetworkEvent(c *gin.Context) {
	event := s.sim.ActiveEvent()
	if event == nil {
		c.JSON(http.StatusOK, gin.H{"event": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (s *Server) getStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Stats())
}

func (s *Server) getActivity(c *gin.Context) {
	c.JSON(http.StatusOK, s.sim.Activity())
}

func (s *Server) getTransaction(c *gin.Context) {
	details, ok := s.sim.TransactionDetails(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown transaction"})
		return
	}
	c.JSON(http.StatusOK, details)
}
