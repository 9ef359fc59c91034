// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity represents the authenticated caller as seen by the HTTP layer:
// a verified external subject identifier. Mapping the subject to an
// application user record happens in the identity domain service, per
// operation, never in middleware.
type Identity interface {
	// Subject returns the verified identity-provider subject id.
	Subject() string
	// IsAuthenticated returns true if a subject was resolved.
	IsAuthenticated() bool
}

type identity struct {
	subject       string
	authenticated bool
}

func (i *identity) Subject() string {
	return i.subject
}

func (i *identity) IsAuthenticated() bool {
	return i.authenticated
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if no subject is present.
func GetIdentity(c *gin.Context) Identity {
	subject, ok := c.Get(ContextSubjectKey)
	if !ok {
		return &identity{}
	}

	sub, ok := subject.(string)
	if !ok || sub == "" {
		return &identity{}
	}

	return &identity{subject: sub, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the caller is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil
	}
	return id
}
