package node

import "github.com/gin-gonic/gin"

// Node is a process that serves the bridge over HTTP.
type Node interface {
	NodeID() string
	Kind() string
	HTTPRouter() *gin.Engine
}
