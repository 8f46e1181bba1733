package jobs

import (
	"fmt"
	"log"
	"time"

	"ittweb/pkg/logger"
)

// ShipLogs uploads the buffered log file to the bucket and truncates it.
func ShipLogs(fileLogger *logger.Logger) error {
	log.Println("Starting log shipping.")

	objectKey := fmt.Sprintf("scheduler/%s.log", time.Now().UTC().Format("2006-01-02T15-04-05"))
	if err := fileLogger.UploadToS3Bucket(objectKey); err != nil {
		return fmt.Errorf("couldn't ship the logs: %w", err)
	}

	log.Printf("Log shipping completed, uploaded %s.", objectKey)
	return nil
}
