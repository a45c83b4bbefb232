package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/layer-3/whisperbox/core"
	"github.com/layer-3/whisperbox/ports"
	"github.com/layer-3/whisperbox/service"
)

// Handlers contains HTTP handlers for the mailbox endpoints
type Handlers struct {
	auth      *service.AuthService
	mailbox   *service.MailboxService
	directory ports.Directory
	tokenizer ports.Tokenizer
	log       logrus.FieldLogger
}

// NewHandlers creates new mailbox handlers
func NewHandlers(
	auth *service.AuthService,
	mailbox *service.MailboxService,
	directory ports.Directory,
	tokenizer ports.Tokenizer,
	log logrus.FieldLogger,
) *Handlers {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Handlers{
		auth:      auth,
		mailbox:   mailbox,
		directory: directory,
		tokenizer: tokenizer,
		log:       log,
	}
}

type messageResponse struct {
	ID         int64  `json:"id"`
	Handle     string `json:"handle"`
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	Epk        string `json:"epk"`
	Nickname   string `json:"nickname,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func toMessageResponse(msg core.Message) messageResponse {
	return messageResponse{
		ID:         msg.ID,
		Handle:     msg.Handle,
		Ciphertext: base64.StdEncoding.EncodeToString(msg.Ciphertext),
		Nonce:      base64.StdEncoding.EncodeToString(msg.Nonce[:]),
		Epk:        base64.StdEncoding.EncodeToString(msg.EphemeralKey[:]),
		Nickname:   msg.Nickname,
		CreatedAt:  msg.CreatedAt.Format(time.RFC3339),
	}
}

type profileResponse struct {
	Handle    string   `json:"handle"`
	Owner     string   `json:"owner"`
	EncPk     string   `json:"enc_pk"`
	Allowlist []string `json:"allowlist"`
}

func toProfileResponse(p *core.Profile) profileResponse {
	return profileResponse{
		Handle:    p.Handle,
		Owner:     p.Owner,
		EncPk:     base64.StdEncoding.EncodeToString(p.EncPublicKey[:]),
		Allowlist: p.Allowlist.Identities(),
	}
}

// Health reports liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// GetProfile returns the public profile for a handle
func (h *Handlers) GetProfile(c *gin.Context) {
	handle := c.Param("handle")

	profile, err := h.directory.Lookup(c.Request.Context(), handle)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidHandle):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid handle"})
		case errors.Is(err, core.ErrUnknownHandle):
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		case errors.Is(err, core.ErrDirectoryUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "directory unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profile"})
		}
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(profile))
}

// OwnerProfiles returns every profile registered by an identity
func (h *Handlers) OwnerProfiles(c *gin.Context) {
	owner := c.Param("identity")

	profiles, err := h.directory.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		if errors.Is(err, core.ErrDirectoryUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "directory unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch profiles"})
		return
	}

	out := make([]profileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

// PostMessage accepts an encrypted message for a handle
func (h *Handlers) PostMessage(c *gin.Context) {
	var req struct {
		Handle     string `json:"handle" binding:"required"`
		Ciphertext string `json:"ciphertext" binding:"required"`
		Nonce      string `json:"nonce" binding:"required"`
		Epk        string `json:"epk" binding:"required"`
		Nickname   string `json:"nickname"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	ciphertext, err := base64.StdEncoding.DecodeString(req.Ciphertext)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed ciphertext"})
		return
	}
	nonce, err := base64.StdEncoding.DecodeString(req.Nonce)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed nonce"})
		return
	}
	epk, err := base64.StdEncoding.DecodeString(req.Epk)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed ephemeral key"})
		return
	}

	id, err := h.mailbox.Append(c.Request.Context(), service.AppendInput{
		Handle:       req.Handle,
		Ciphertext:   ciphertext,
		Nonce:        nonce,
		EphemeralKey: epk,
		Nickname:     req.Nickname,
	})
	if err != nil {
		// The posting path is public, so unknown handles and shape
		// problems are reported plainly.
		switch {
		case errors.Is(err, core.ErrUnknownHandle):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown handle"})
		case errors.Is(err, core.ErrInvalidHandle),
			errors.Is(err, core.ErrInvalidNonce),
			errors.Is(err, core.ErrInvalidPublicKey),
			errors.Is(err, core.ErrInvalidCiphertext):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, core.ErrDirectoryUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "directory unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id})
}

// GetChallenge issues a challenge for a handle
func (h *Handlers) GetChallenge(c *gin.Context) {
	handle := c.Query("handle")

	challenge, err := h.auth.IssueChallenge(c.Request.Context(), handle)
	if err != nil {
		switch {
		case errors.Is(err, core.ErrInvalidHandle):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid handle"})
		case errors.Is(err, core.ErrUnknownHandle):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown handle"})
		case errors.Is(err, core.ErrDirectoryUnavailable):
			c.JSON(http.StatusBadGateway, gin.H{"error": "directory unavailable"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create challenge"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":      challenge.Nonce,
		"message":    challenge.Message,
		"expires_at": challenge.ExpiresAt.Unix(),
	})
}

// PostInbox verifies a signed challenge and returns the handle's messages
func (h *Handlers) PostInbox(c *gin.Context) {
	var req struct {
		Handle    string `json:"handle" binding:"required"`
		Identity  string `json:"identity" binding:"required"`
		Signature string `json:"signature" binding:"required"`
		Nonce     string `json:"nonce" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	grant, err := h.auth.Authorize(c.Request.Context(), req.Handle, req.Identity, req.Signature, req.Nonce)
	if err != nil {
		if errors.Is(err, core.ErrDirectoryUnavailable) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "directory unavailable"})
			return
		}
		// Every other reason collapses to one denial so the response
		// cannot be used as an oracle. The detail is already logged
		// by the auth service.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
		return
	}

	h.listInbox(c, grant, req.Handle, true)
}

// GetInbox lists a handle using an access token instead of a fresh signature
func (h *Handlers) GetInbox(c *gin.Context) {
	handle := c.Param("handle")

	grant := grantFromContext(c)
	if grant == nil || grant.Handle != handle {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
		return
	}

	h.listInbox(c, grant, handle, false)
}

func (h *Handlers) listInbox(c *gin.Context, grant *core.Grant, handle string, issueToken bool) {
	msgs, err := h.mailbox.List(c.Request.Context(), grant, handle)
	if err != nil {
		if errors.Is(err, core.ErrNotAuthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "access denied"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}

	out := make([]messageResponse, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, toMessageResponse(msg))
	}

	resp := gin.H{"messages": out}
	if issueToken && h.tokenizer != nil {
		token, expiresAt, err := h.tokenizer.GrantToToken(grant)
		if err != nil {
			h.log.WithError(err).Warn("failed to issue access token")
		} else {
			resp["access_token"] = token
			resp["expires_at"] = expiresAt.Unix()
		}
	}

	c.JSON(http.StatusOK, resp)
}
