package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/logforms/internal/common"
	"github.com/joseph-ayodele/logforms/internal/entity"
	"github.com/joseph-ayodele/logforms/internal/repository"
)

// testConnection checks the coordinates reach a store and reports whether
// the target table already exists.
func (s *Server) testConnection(c *gin.Context) {
	var coords entity.StoreCoordinates
	if !s.bind(c, &coords) {
		return
	}
	res, err := s.provisioner.TestConnection(c.Request.Context(), coords)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) createSchema(c *gin.Context) {
	var req createSchemaRequest
	if !s.bind(c, &req) {
		return
	}

	var schema entity.StorageSchema
	if req.Schema != nil {
		schema = *req.Schema
	} else {
		schema = repository.MapSchema(req.Config.Normalize().TableName, req.Fields)
	}

	res, err := s.provisioner.Provision(c.Request.Context(), req.Config, schema)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) saveData(c *gin.Context) {
	var req saveDataRequest
	if !s.bind(c, &req) {
		return
	}
	rec, err := s.records.Save(c.Request.Context(), req.Config, req.Fields, req.Data)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}

// mapSchema previews the storage layout for a field list without touching
// any store.
func (s *Server) mapSchema(c *gin.Context) {
	var req mapSchemaRequest
	if !s.bind(c, &req) {
		return
	}
	schema := repository.MapSchema(req.TableName, req.Fields)
	if err := common.ValidateStruct(schema); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, schema)
}
