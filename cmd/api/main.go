package main

import (
	"log"

	_ "github.com/dhima/audit-store/docs" // Import generated docs
	"github.com/dhima/audit-store/internal/api"
)

// @title Audit Store API
// @version 1.0
// @description Persistence service for DHIS2 audit records.
// @description
// @description ## Features
// @description - **Record**: single audits are stored synchronously and return their generated id
// @description - **Async ingest**: audits can be queued on Kafka and stored by the consumer
// @description - **Retention**: a scheduled job removes audits older than the configured window
// @description
// @description Criteria filtering, counting, batch save and criteria delete are accepted but not applied by the store.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

func main() {
	srv := api.NewServer()
	if err := srv.Serve(); err != nil {
		log.Fatalf("api server stopped: %v", err)
	}
}
