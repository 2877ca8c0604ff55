package config

import (
	"os"
	"sync"
	"time"
)

type PDFConfig struct {
	ChromePath string
	Timeout    time.Duration
}

var (
	pdfConfig *PDFConfig
	pdfOnce   sync.Once
)

func LoadPDFConfig() *PDFConfig {
	pdfOnce.Do(func() {
		pdfConfig = &PDFConfig{
			ChromePath: os.Getenv("CHROME_PATH"),
			Timeout:    getEnvDuration("PDF_TIMEOUT", 60*time.Second),
		}
	})
	return pdfConfig
}
