package docs

import "github.com/swaggo/swag"

// @title           Dayplan API
// @version         1.0
// @description     API for the daily planning scheduling core

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token

// @tag.name Users
// @tag.description Registration and login

// @tag.name Tasks
// @tag.description Task placement and bucket operations

// @tag.name Time Blocks
// @tag.description Timeline layout operations

// @tag.name Settings
// @tag.description Per-user rollover preferences

// @tag.name Rollover
// @tag.description Rollover runs and audit log

// Register swagger info
func SwaggerInfo() *swag.Spec {
	return swag.Instance
}
