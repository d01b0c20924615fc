package cart

// Profile holds the customer details collected during the conversation.
// Fields are set independently as the model extracts them and persist
// across cart clears.
type Profile struct {
	Name    string `json:"name,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// Complete reports whether everything needed for a delivery order is set.
func (p *Profile) Complete() bool {
	return p.Name != "" && p.Phone != "" && p.Address != ""
}
