package catalog

import (
	"fmt"
	"strings"
)

// PastExamLabel renders a Japanese display label for a past-exam set, e.g.
// "令和5年 春期 基本情報". Unknown set ids come back unchanged.
func PastExamLabel(c *Catalog, setID string) string {
	for _, set := range c.examSets {
		if set.ID != setID {
			continue
		}

		suffix := ""
		if strings.HasSuffix(set.ID, "_fe_am") {
			suffix = "午前"
		} else if strings.HasSuffix(set.ID, "_fe_pm") {
			suffix = "午後"
		}

		// Reiwa era started in 2019.
		era := fmt.Sprintf("%d年", set.Year)
		if eraYear := set.Year - 2018; eraYear > 0 {
			era = fmt.Sprintf("令和%d年", eraYear)
		}

		label := era + " " + seasonLabel(set.Season)
		if suffix != "" {
			label += " " + suffix
		}
		return label + " 基本情報"
	}
	return setID
}

func seasonLabel(season string) string {
	if season == "Spring" {
		return "春期"
	}
	return "秋期"
}
