package vulnlib

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const dateLayout = "2006-01-02 15:04:05"

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func mkFolder(path string) error {
	if exists(path) {
		return nil
	}
	return os.MkdirAll(path, os.FileMode(0755))
}

// checkExpired reports whether the date log in path is older than expire.
func checkExpired(path string, expire time.Duration) bool {
	value, err := os.ReadFile(filepath.Join(path, "date.txt"))
	if err != nil || len(value) < 1 {
		return true
	}

	logDate, err := time.ParseInLocation(dateLayout, strings.TrimSpace(string(value)), time.Local)

	// Check whether a time format
	if err != nil {
		log.Printf("Date format error, expired")
		return true
	}

	return time.Now().After(logDate.Add(expire))
}

func writeLog(path string) error {
	filename := filepath.Join(path, "date.txt")
	return os.WriteFile(filename, []byte(time.Now().Format(dateLayout)), 0644)
}
