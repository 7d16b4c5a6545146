package continuity

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	types "github.com/yungbote/continuity-backend/internal/domain"
)

// Analysis is one validated risk finding for an employee.
type Analysis struct {
	EmployeeID     uuid.UUID
	KnowledgeAreas []types.KnowledgeArea
	RiskScore      int
	BackupPeople   []types.BackupPerson
}

// Rejection records why a decoded entry was dropped.
type Rejection struct {
	Index  int
	Reason string
}

type rawArea struct {
	Area         string   `json:"area"`
	Score        *float64 `json:"score"`
	RelatedItems []string `json:"relatedItems"`
}

type rawBackup struct {
	UserID        string   `json:"userId"`
	CoverageScore *float64 `json:"coverageScore"`
}

type rawAnalysis struct {
	UserID         string      `json:"userId"`
	KnowledgeAreas []rawArea   `json:"knowledgeAreas"`
	RiskScore      *float64    `json:"riskScore"`
	BackupPeople   []rawBackup `json:"backupPeople"`
}

// ExtractJSONArray finds a JSON array in free model output. It tries the whole
// text, then the text inside a markdown fence, then the outermost [ ... ] span.
func ExtractJSONArray(text string) ([]json.RawMessage, bool) {
	candidates := []string{strings.TrimSpace(text)}
	if fenced, ok := stripFence(text); ok {
		candidates = append(candidates, fenced)
	}
	if i, j := strings.Index(text, "["), strings.LastIndex(text, "]"); i >= 0 && j > i {
		candidates = append(candidates, text[i:j+1])
	}
	for _, c := range candidates {
		var arr []json.RawMessage
		if err := json.Unmarshal([]byte(c), &arr); err == nil && arr != nil {
			return arr, true
		}
	}
	return nil, false
}

func stripFence(text string) (string, bool) {
	start := strings.Index(text, "```")
	if start < 0 {
		return "", false
	}
	rest := text[start+3:]
	// Drop an info string such as "json".
	if nl := strings.Index(rest, "\n"); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.LastIndex(rest, "```")
	if end < 0 {
		return strings.TrimSpace(rest), true
	}
	return strings.TrimSpace(rest[:end]), true
}

// ParseAnalyses decodes and validates model output. known is the set of user ids
// that were sent in the request. ok is false when no JSON array could be found.
// Invalid entries are dropped; a repeated userId keeps its first valid entry.
func ParseAnalyses(text string, known map[uuid.UUID]bool) (out []Analysis, rejected []Rejection, ok bool) {
	out = []Analysis{}
	arr, found := ExtractJSONArray(text)
	if !found {
		return out, nil, false
	}

	seen := map[uuid.UUID]bool{}
	for i, raw := range arr {
		var r rawAnalysis
		if err := json.Unmarshal(raw, &r); err != nil {
			rejected = append(rejected, Rejection{Index: i, Reason: "malformed entry: " + err.Error()})
			continue
		}
		a, err := validate(r, known)
		if err != nil {
			rejected = append(rejected, Rejection{Index: i, Reason: err.Error()})
			continue
		}
		if seen[a.EmployeeID] {
			rejected = append(rejected, Rejection{Index: i, Reason: "duplicate userId " + a.EmployeeID.String()})
			continue
		}
		seen[a.EmployeeID] = true
		out = append(out, a)
	}
	return out, rejected, true
}

func validate(r rawAnalysis, known map[uuid.UUID]bool) (Analysis, error) {
	employeeID, err := uuid.Parse(strings.TrimSpace(r.UserID))
	if err != nil || employeeID == uuid.Nil {
		return Analysis{}, fmt.Errorf("invalid userId %q", r.UserID)
	}
	if !known[employeeID] {
		return Analysis{}, fmt.Errorf("unknown userId %s", employeeID)
	}
	risk, err := score("riskScore", r.RiskScore)
	if err != nil {
		return Analysis{}, err
	}

	areas := make([]types.KnowledgeArea, 0, len(r.KnowledgeAreas))
	for _, ra := range r.KnowledgeAreas {
		label := strings.TrimSpace(ra.Area)
		if label == "" {
			return Analysis{}, fmt.Errorf("empty knowledge area label")
		}
		s, err := score("knowledgeAreas.score", ra.Score)
		if err != nil {
			return Analysis{}, err
		}
		related := make([]uuid.UUID, 0, len(ra.RelatedItems))
		for _, item := range ra.RelatedItems {
			id, err := uuid.Parse(strings.TrimSpace(item))
			if err != nil {
				return Analysis{}, fmt.Errorf("invalid relatedItems id %q", item)
			}
			related = append(related, id)
		}
		areas = append(areas, types.KnowledgeArea{Area: label, Score: s, RelatedItems: related})
	}

	backups := make([]types.BackupPerson, 0, len(r.BackupPeople))
	for _, rb := range r.BackupPeople {
		id, err := uuid.Parse(strings.TrimSpace(rb.UserID))
		if err != nil || id == uuid.Nil {
			return Analysis{}, fmt.Errorf("invalid backupPeople userId %q", rb.UserID)
		}
		s, err := score("backupPeople.coverageScore", rb.CoverageScore)
		if err != nil {
			return Analysis{}, err
		}
		backups = append(backups, types.BackupPerson{UserID: id, CoverageScore: s})
	}

	return Analysis{
		EmployeeID:     employeeID,
		KnowledgeAreas: areas,
		RiskScore:      risk,
		BackupPeople:   backups,
	}, nil
}

func score(field string, v *float64) (int, error) {
	if v == nil {
		return 0, fmt.Errorf("%s is required", field)
	}
	f := *v
	if math.IsNaN(f) || f < types.MinScore || f > types.MaxScore {
		return 0, fmt.Errorf("%s %v out of range", field, f)
	}
	return int(math.Round(f)), nil
}
