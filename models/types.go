// Package models contain needed models
package models

// StegoConfig represents configuration for steganography operations
type StegoConfig struct {
	// Passphrase enables the cipher when non-empty
	Passphrase string
	// LegacySalt emits the two-field fixed-salt cipher text encoding
	LegacySalt bool
	// MaxPixels bounds image width*height; zero uses the decoder default
	MaxPixels int
}

// HasPassphrase reports whether payloads are encrypted before framing.
func (c *StegoConfig) HasPassphrase() bool {
	return c != nil && c.Passphrase != ""
}

// EmbedRequest represents the form fields for hiding a message
type EmbedRequest struct {
	Message  string `form:"message" binding:"required"`
	Password string `form:"password"`
	Mimetype string `form:"mimetype"`
}

// ExtractRequest represents the form fields for recovering a message
type ExtractRequest struct {
	Password string `form:"password"`
	Mimetype string `form:"mimetype"`
}

// CapacityRequest represents the form fields for a capacity check
type CapacityRequest struct {
	MessageLength int    `form:"message_length" binding:"required,min=1"`
	Password      string `form:"password"`
	Mimetype      string `form:"mimetype"`
}

// StegoResponse represents a generic response, used for errors
type StegoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ExtractResponse represents the response after extraction
type ExtractResponse struct {
	Success          bool   `json:"success"`
	Message          string `json:"message"`
	SecretMessage    string `json:"secret_message"`
	MessageLength    int    `json:"message_length"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// CapacityResponse represents the response of a capacity check
type CapacityResponse struct {
	Success         bool   `json:"success"`
	CanFit          bool   `json:"can_fit"`
	CapacityBytes   int    `json:"capacity_bytes"`
	RequestedLength int    `json:"requested_length"`
	EstimatedLength int    `json:"estimated_length"`
	Algorithm       string `json:"algorithm"`
}

// AlgorithmInfo describes an embedding algorithm
type AlgorithmInfo struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	SupportedFormats []string `json:"supported_formats"`
	Capacity         string   `json:"capacity"`
	Security         string   `json:"security"`
}

// AlgorithmsResponse lists the available algorithms
type AlgorithmsResponse struct {
	Success    bool            `json:"success"`
	Algorithms []AlgorithmInfo `json:"algorithms"`
}

// Recommendation is the algorithm suggested for a carrier type
type Recommendation struct {
	Algorithm string `json:"algorithm"`
	Reason    string `json:"reason"`
}

// RecommendResponse represents the response of an algorithm recommendation
type RecommendResponse struct {
	Success bool `json:"success"`
	Recommendation
}

// CarrierMetadata represents metadata about a loaded carrier file
type CarrierMetadata struct {
	Kind          string  `json:"kind"`
	Mimetype      string  `json:"mimetype"`
	Width         int     `json:"width,omitempty"`
	Height        int     `json:"height,omitempty"`
	Channels      int     `json:"channels"`
	SampleRate    int     `json:"sample_rate,omitempty"`
	BitDepth      int     `json:"bit_depth,omitempty"`
	Duration      float64 `json:"duration,omitempty"`
	TotalBytes    int     `json:"total_bytes"`
	CapacityBits  int     `json:"capacity_bits"`
	CapacityBytes int     `json:"capacity_bytes"`
}

// InspectResponse represents carrier metadata returned to clients
type InspectResponse struct {
	Success  bool            `json:"success"`
	Metadata CarrierMetadata `json:"metadata"`
}
