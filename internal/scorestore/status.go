package scorestore

import (
	"fmt"

	"github.com/ArnoldoM23/pess/schema"
)

// PrintStoreStatus prints score store status information.
func PrintStoreStatus(status schema.StoreStatus) {
	fmt.Printf("Store Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Scores: %d\n", status.TotalScores)
	if status.TotalScores > 0 {
		fmt.Printf("Last Score: %s\n", status.LastScoreTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Oldest Score: %s\n", status.OldestScoreTime.Format("2006-01-02 15:04:05"))
	}
	fmt.Println("Table Sizes:")
	for table, size := range status.TableSizes {
		fmt.Printf("  %s: %d rows\n", table, size)
	}
}
