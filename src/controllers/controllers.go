package controllers

import (
	"github.com/unlinked-app/unlinked-backend/src/emails"
	"github.com/unlinked-app/unlinked-backend/src/services"
)

// Package-level collaborators, wired once from main. The upload service may be
// nil when Cloudinary credentials are absent; image fields are then rejected.
var (
	connectionService *services.ConnectionService
	uploads           *services.UploadService
	mailer            emails.Sender
	clientURL         string
)

// Init wires the services the controllers depend on
func Init(conn *services.ConnectionService, up *services.UploadService, m emails.Sender, client string) {
	connectionService = conn
	uploads = up
	mailer = m
	clientURL = client
}
