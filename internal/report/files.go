package report

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/kvesta/lem/config"
)

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// getOutputFile resolves outfile, "output" means ./output/<date>.<ext>.
func getOutputFile(outfile, ext string) (string, error) {
	if outfile == "output" {
		pwd, _ := os.Getwd()
		folder := filepath.Join(pwd, "output")
		if !exists(folder) {
			err := os.MkdirAll(folder, os.FileMode(0755))
			if err != nil {
				return "", err
			}
		}
		nowStamp := time.Now().Format("2006-01-02")
		file := filepath.Join(folder, fmt.Sprintf("%s.%s", nowStamp, ext))

		return file, nil
	}

	folder := filepath.Dir(outfile)
	if !exists(folder) {
		err := os.MkdirAll(folder, os.FileMode(0755))
		if err != nil {
			return "", err
		}
	}

	return outfile, nil
}

// ToJson writes v as JSON and returns the file name.
func ToJson(outfile string, v interface{}) (string, error) {
	filename, err := getOutputFile(outfile, "json")
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	err = os.WriteFile(filename, data, 0644)
	if err != nil {
		return "", err
	}

	log.Printf("Output file is saved in: %s", config.Yellow(filename))

	return filename, nil
}

// FindingsToCSV writes the findings of an assessment as CSV.
func FindingsToCSV(outfile string, findings []*Finding) (string, error) {
	filename, err := getOutputFile(outfile, "csv")
	if err != nil {
		return "", err
	}

	f, err := os.Create(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&findings, f); err != nil {
		return "", err
	}

	log.Printf("Output file is saved in: %s", config.Yellow(filename))

	return filename, nil
}
