package services

import (
	"fmt"
)

// FormatTime renders elapsed seconds as m:ss for UI display
func FormatTime(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
