package cli

import (
	"fmt"
	"option-explorer/interfaces"
	"option-explorer/services"
	"os"
)

func writeChartFile(path string, spec interfaces.ChartSpec) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer file.Close()

	if err := services.RenderChartPNG(spec, file); err != nil {
		return err
	}
	return file.Close()
}
