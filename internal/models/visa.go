// internal/models/visa.go
package models

import "encoding/json"

type DocumentRole string

const (
	RolePassport DocumentRole = "passport"
	RoleBank     DocumentRole = "bank"
	RoleOffer    DocumentRole = "offer"
)

// RequiredRoles lists the document slots every assessment needs, in output order.
var RequiredRoles = []DocumentRole{RolePassport, RoleBank, RoleOffer}

// DocumentUpload is the metadata of one uploaded file as received from a transport.
type DocumentUpload struct {
	OriginalName string `json:"originalName"`
	SizeBytes    int64  `json:"sizeBytes"`
}

// DocumentSlots holds the three named upload slots. A nil slot means the file is missing.
type DocumentSlots struct {
	Passport *DocumentUpload `json:"passport,omitempty"`
	Bank     *DocumentUpload `json:"bank,omitempty"`
	Offer    *DocumentUpload `json:"offer,omitempty"`
}

// Slot returns the upload stored for role, or nil.
func (s DocumentSlots) Slot(role DocumentRole) *DocumentUpload {
	switch role {
	case RolePassport:
		return s.Passport
	case RoleBank:
		return s.Bank
	case RoleOffer:
		return s.Offer
	default:
		return nil
	}
}

// DocumentDescriptor is one document bound to its declared role.
type DocumentDescriptor struct {
	Role         DocumentRole `json:"role"`
	OriginalName string       `json:"originalName"`
	SizeBytes    int64        `json:"sizeBytes"`
}

// DocumentAssessment is the verdict for a single document. ScoreImpact only
// feeds the aggregate score and is never serialized.
type DocumentAssessment struct {
	Name        string `json:"name"`
	OK          bool   `json:"ok"`
	Note        string `json:"note"`
	ScoreImpact int    `json:"-"`
}

type ScoreResult struct {
	Score   int      `json:"score"`
	Plain   string   `json:"plain"`
	Reasons []string `json:"reasons"`
}

// Bands, highest first.
const (
	BandHighlyLikely = "Highly likely"
	BandLikely       = "Likely"
	BandBorderline   = "Borderline"
	BandUnlikely     = "Unlikely"
)

type RiskItem struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type CountryAssessment struct {
	Name   string `json:"name"`
	Score  int    `json:"score"`
	Flag   string `json:"flag"`
	Reason string `json:"reason"`
}

type TwinSummary struct {
	Name       string   `json:"name"`
	Confidence int      `json:"confidence"`
	Traits     []string `json:"traits"`
}

// AnalysisRequest is the decoded input of one assessment.
type AnalysisRequest struct {
	Profile   ApplicantProfile
	Documents DocumentSlots
}

// AnalysisResult is the verdict returned to callers.
type AnalysisResult struct {
	Score     int                  `json:"score"`
	Plain     string               `json:"plain"`
	Reasons   []string             `json:"reasons"`
	Docs      []DocumentAssessment `json:"docs"`
	Twin      TwinSummary          `json:"twin"`
	Countries []CountryAssessment  `json:"countries"`
	Risk      []RiskItem           `json:"risk"`
}

// AnalysisInput is the raw transport payload shared by the HTTP API and the
// workflow workers. Profile may be a JSON object or a JSON string that encodes one.
type AnalysisInput struct {
	Profile   json.RawMessage `json:"profile,omitempty"`
	Documents DocumentSlots   `json:"documents"`
	Assessor  string          `json:"assessor,omitempty"`
}
