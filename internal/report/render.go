package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/recipeaudit/internal/domain"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats 是支持的输出格式（text 为默认）。
var Formats = []string{FormatText, FormatJSON, FormatYAML}

func IsFormat(s string) bool {
	for _, f := range Formats {
		if s == f {
			return true
		}
	}
	return false
}

// Render 按 format 输出审计报告。
//
// text 格式是对外契约：
//
//	Scanned <n> recipes.
//
//	Possible Issues:
//	<issue>...
func Render(w io.Writer, format string, rr domain.AuditReport) error {
	switch format {
	case FormatText, "":
		return writeText(w, rr)
	case FormatJSON:
		return writeJSON(w, rr)
	case FormatYAML:
		return writeYAML(w, rr)
	default:
		return fmt.Errorf("未知输出格式：%q", format)
	}
}

func writeText(w io.Writer, rr domain.AuditReport) error {
	if _, err := fmt.Fprintf(w, "Scanned %d recipes.\n\nPossible Issues:\n", rr.Scanned); err != nil {
		return err
	}
	for _, it := range rr.Issues {
		if _, err := fmt.Fprintln(w, it.Message); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// MeasureRow 是 measure 命令的一行：单条配方的体积聚合。
type MeasureRow struct {
	ID      domain.RecipeID `json:"id" yaml:"id"`
	Name    string          `json:"name" yaml:"name"`
	Volumes domain.Volumes  `json:"volumes" yaml:"volumes"`
}

// RenderMeasure 输出体积聚合表。text 为对齐的列；json/yaml 为行数组。
func RenderMeasure(w io.Writer, format string, rows []MeasureRow) error {
	if rows == nil {
		rows = []MeasureRow{}
	}
	switch format {
	case FormatText, "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tTOTAL\tACID\tSWEET\tSPIRIT")
		for _, r := range rows {
			v := r.Volumes
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.ID, r.Name,
				domain.FormatOunces(v.Total), domain.FormatOunces(v.Acid),
				domain.FormatOunces(v.Sweet), domain.FormatOunces(v.Spirit),
			)
		}
		return tw.Flush()
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatYAML:
		return writeYAML(w, rows)
	default:
		return fmt.Errorf("未知输出格式：%q", format)
	}
}
