package commands

import (
	"fmt"
	"time"

	"github.com/wonny/coverline/internal/scheduler"
)

const rule = "═══════════════════════════════════════════════════════════"

// printHeader prints a formatted section header
func printHeader(title string) {
	fmt.Println()
	fmt.Println(rule)
	fmt.Printf("  %s\n", title)
	fmt.Println("───────────────────────────────────────────────────────────")
}

// printRow prints one aligned key/value line
func printRow(key string, value interface{}) {
	fmt.Printf("  %-20s: %v\n", key, value)
}

// printJobResult prints the outcome of a manual job run
func printJobResult(r scheduler.JobResult) {
	printHeader("Job " + r.JobName)
	printRow("Started", r.StartTime.Format(time.RFC3339))
	printRow("Duration", r.Duration.Round(time.Millisecond))
	printRow("Attempts", r.Attempts)
	if r.Success {
		fmt.Println("\n✅ Job completed")
		return
	}
	printRow("Error", r.Error)
	fmt.Println("\n❌ Job failed")
}
