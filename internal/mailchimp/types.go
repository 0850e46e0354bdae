package mailchimp

// Wire types for the Mailchimp v3 endpoints the gateway touches.
// Fields the tools never surface are left out on purpose; unknown
// fields in responses are ignored by encoding/json.

// ListsResponse is the body of GET /lists.
type ListsResponse struct {
	Lists      []List `json:"lists"`
	TotalItems int    `json:"total_items"`
}

// List is a Mailchimp audience.
type List struct {
	ID    string    `json:"id"`
	Name  string    `json:"name"`
	Stats ListStats `json:"stats"`
}

// ListStats carries audience aggregates. Rates are fractions (0.423
// means 42.3%), not percentages.
type ListStats struct {
	MemberCount      int     `json:"member_count"`
	UnsubscribeCount int     `json:"unsubscribe_count"`
	OpenRate         float64 `json:"open_rate"`
	ClickRate        float64 `json:"click_rate"`
}

// CampaignsResponse is the body of GET /campaigns.
type CampaignsResponse struct {
	Campaigns  []Campaign `json:"campaigns"`
	TotalItems int        `json:"total_items"`
}

// Campaign is one campaign as returned by the API. SendTime stays ""
// until the campaign has been sent or scheduled; ReportSummary stays
// nil until delivery stats exist.
type Campaign struct {
	ID            string             `json:"id"`
	Type          string             `json:"type"`
	Status        string             `json:"status"`
	CreateTime    string             `json:"create_time"`
	SendTime      string             `json:"send_time"`
	EmailsSent    int                `json:"emails_sent"`
	Recipients    CampaignRecipients `json:"recipients"`
	Settings      CampaignSettings   `json:"settings"`
	ReportSummary *ReportSummary     `json:"report_summary,omitempty"`
}

// CampaignRecipients names the audience a campaign targets.
type CampaignRecipients struct {
	ListID   string `json:"list_id"`
	ListName string `json:"list_name"`
}

// CampaignSettings is shared between campaign responses and the create
// request. PreviewText is deliberately not omitempty: an empty preview
// is a valid value and must survive the round trip.
type CampaignSettings struct {
	SubjectLine string `json:"subject_line"`
	PreviewText string `json:"preview_text"`
	Title       string `json:"title"`
	FromName    string `json:"from_name"`
	ReplyTo     string `json:"reply_to"`
}

// ReportSummary is the abbreviated stats block embedded in campaign
// listings.
type ReportSummary struct {
	Opens            int     `json:"opens"`
	UniqueOpens      int     `json:"unique_opens"`
	OpenRate         float64 `json:"open_rate"`
	Clicks           int     `json:"clicks"`
	SubscriberClicks int     `json:"subscriber_clicks"`
	ClickRate        float64 `json:"click_rate"`
}

// Report is the body of GET /reports/{campaign_id}. The Opens, Clicks
// and Bounces blocks are nil when the API omits them, which happens
// for campaigns without delivery data yet.
type Report struct {
	ID            string         `json:"id"`
	CampaignTitle string         `json:"campaign_title"`
	Type          string         `json:"type"`
	ListID        string         `json:"list_id"`
	ListName      string         `json:"list_name"`
	SubjectLine   string         `json:"subject_line"`
	EmailsSent    int            `json:"emails_sent"`
	AbuseReports  int            `json:"abuse_reports"`
	Unsubscribed  int            `json:"unsubscribed"`
	SendTime      string         `json:"send_time"`
	Bounces       *ReportBounces `json:"bounces"`
	Opens         *ReportOpens   `json:"opens"`
	Clicks        *ReportClicks  `json:"clicks"`
}

// ReportBounces breaks down bounce counts.
type ReportBounces struct {
	HardBounces  int `json:"hard_bounces"`
	SoftBounces  int `json:"soft_bounces"`
	SyntaxErrors int `json:"syntax_errors"`
}

// ReportOpens carries open tracking totals.
type ReportOpens struct {
	OpensTotal  int     `json:"opens_total"`
	UniqueOpens int     `json:"unique_opens"`
	OpenRate    float64 `json:"open_rate"`
	LastOpen    string  `json:"last_open"`
}

// ReportClicks carries click tracking totals.
type ReportClicks struct {
	ClicksTotal            int     `json:"clicks_total"`
	UniqueClicks           int     `json:"unique_clicks"`
	UniqueSubscriberClicks int     `json:"unique_subscriber_clicks"`
	ClickRate              float64 `json:"click_rate"`
	LastClick              string  `json:"last_click"`
}

// CreateCampaignRequest is the body of POST /campaigns.
type CreateCampaignRequest struct {
	Type       string           `json:"type"`
	Recipients RecipientsRef    `json:"recipients"`
	Settings   CampaignSettings `json:"settings"`
}

// RecipientsRef names the target audience when creating a campaign.
type RecipientsRef struct {
	ListID string `json:"list_id"`
}

// ContentRequest is the body of PUT /campaigns/{id}/content.
type ContentRequest struct {
	HTML string `json:"html"`
}

// TestSendRequest is the body of POST /campaigns/{id}/actions/test.
type TestSendRequest struct {
	TestEmails []string `json:"test_emails"`
	SendType   string   `json:"send_type"`
}

// ScheduleRequest is the body of POST /campaigns/{id}/actions/schedule.
// ScheduleTime is RFC 3339 in UTC.
type ScheduleRequest struct {
	ScheduleTime string `json:"schedule_time"`
}
