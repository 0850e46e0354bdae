package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/VBurburan/mailchimp-mcp-server/internal/mailchimp"
	"github.com/VBurburan/mailchimp-mcp-server/internal/pkg/httputil"
)

// store keeps the stub's in-memory account state so create, content,
// send and report flows behave like a real account for the lifetime
// of the process.
type store struct {
	mu        sync.Mutex
	lists     []mailchimp.List
	campaigns []*mailchimp.Campaign
	content   map[string]string
}

func newStore() *store {
	return &store{
		lists: []mailchimp.List{
			{
				ID:   "f1a2b3c4d5",
				Name: "Weekly Newsletter",
				Stats: mailchimp.ListStats{
					MemberCount:      1250,
					UnsubscribeCount: 38,
					OpenRate:         0.412,
					ClickRate:        0.076,
				},
			},
			{
				ID:   "e6f7a8b9c0",
				Name: "Product Updates",
				Stats: mailchimp.ListStats{
					MemberCount:      342,
					UnsubscribeCount: 5,
					OpenRate:         0.358,
					ClickRate:        0.049,
				},
			},
		},
		content: make(map[string]string),
	}
}

func (s *store) findList(id string) *mailchimp.List {
	for i := range s.lists {
		if s.lists[i].ID == id {
			return &s.lists[i]
		}
	}
	return nil
}

func (s *store) findCampaign(id string) *mailchimp.Campaign {
	for _, c := range s.campaigns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (s *store) handleLists(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	httputil.OK(w, mailchimp.ListsResponse{Lists: s.lists, TotalItems: len(s.lists)})
}

func (s *store) handleListCampaigns(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := r.URL.Query().Get("status")
	count := 10
	if raw := r.URL.Query().Get("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.BadRequest(w, "Invalid count parameter")
			return
		}
		count = n
	}

	// Newest first, matching sort_dir=DESC on create_time.
	out := make([]mailchimp.Campaign, 0, len(s.campaigns))
	for i := len(s.campaigns) - 1; i >= 0; i-- {
		c := s.campaigns[i]
		if status != "" && c.Status != status {
			continue
		}
		if len(out) < count {
			out = append(out, *c)
		}
	}
	httputil.OK(w, mailchimp.CampaignsResponse{Campaigns: out, TotalItems: len(out)})
}

func (s *store) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req mailchimp.CreateCampaignRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.findList(req.Recipients.ListID)
	if list == nil {
		httputil.BadRequest(w, "Invalid list_id: "+req.Recipients.ListID)
		return
	}

	c := &mailchimp.Campaign{
		ID:         strings.ReplaceAll(uuid.NewString(), "-", "")[:10],
		Type:       req.Type,
		Status:     "draft",
		CreateTime: time.Now().UTC().Format(time.RFC3339),
		Recipients: mailchimp.CampaignRecipients{ListID: list.ID, ListName: list.Name},
		Settings:   req.Settings,
	}
	s.campaigns = append(s.campaigns, c)
	httputil.OK(w, c)
}

func (s *store) handleSetContent(w http.ResponseWriter, r *http.Request) {
	var req mailchimp.ContentRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCampaign(r.PathValue("id"))
	if c == nil {
		httputil.NotFound(w, "Campaign not found")
		return
	}
	if c.Status != "draft" {
		httputil.BadRequest(w, "Campaign content can only be set while the campaign is a draft")
		return
	}
	s.content[c.ID] = req.HTML
	httputil.OK(w, map[string]string{"html": req.HTML})
}

func (s *store) handleTestSend(w http.ResponseWriter, r *http.Request) {
	var req mailchimp.TestSendRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCampaign(r.PathValue("id"))
	if c == nil {
		httputil.NotFound(w, "Campaign not found")
		return
	}
	if s.content[c.ID] == "" {
		httputil.BadRequest(w, "Campaign has no content")
		return
	}
	if len(req.TestEmails) == 0 || len(req.TestEmails) > 5 {
		httputil.BadRequest(w, "test_emails must contain between 1 and 5 addresses")
		return
	}
	log.Printf("STUB: test send of campaign %s to %d address(es)", c.ID, len(req.TestEmails))
	httputil.NoContent(w)
}

func (s *store) handleSend(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCampaign(r.PathValue("id"))
	if c == nil {
		httputil.NotFound(w, "Campaign not found")
		return
	}
	if c.Status == "sent" {
		httputil.BadRequest(w, "Campaign has already been sent")
		return
	}
	if s.content[c.ID] == "" {
		httputil.BadRequest(w, "Campaign has no content")
		return
	}

	list := s.findList(c.Recipients.ListID)
	c.Status = "sent"
	c.SendTime = time.Now().UTC().Format(time.RFC3339)
	if list != nil {
		c.EmailsSent = list.Stats.MemberCount
	}
	c.ReportSummary = synthSummary(c.EmailsSent)
	log.Printf("STUB: campaign %s sent to %d recipient(s)", c.ID, c.EmailsSent)
	httputil.NoContent(w)
}

func (s *store) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req mailchimp.ScheduleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCampaign(r.PathValue("id"))
	if c == nil {
		httputil.NotFound(w, "Campaign not found")
		return
	}
	if c.Status != "draft" {
		httputil.BadRequest(w, "Campaign is not in draft status")
		return
	}
	if s.content[c.ID] == "" {
		httputil.BadRequest(w, "Campaign has no content")
		return
	}
	when, err := time.Parse(time.RFC3339, req.ScheduleTime)
	if err != nil {
		httputil.BadRequest(w, "Invalid schedule_time")
		return
	}
	if when.Minute()%15 != 0 || when.Second() != 0 {
		httputil.BadRequest(w, "The schedule time must be in 15 minute intervals")
		return
	}

	c.Status = "scheduled"
	c.SendTime = when.UTC().Format(time.RFC3339)
	log.Printf("STUB: campaign %s scheduled for %s", c.ID, c.SendTime)
	httputil.NoContent(w)
}

func (s *store) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := r.PathValue("id")
	for i, c := range s.campaigns {
		if c.ID != id {
			continue
		}
		if c.Status != "draft" {
			httputil.BadRequest(w, "Cannot delete a campaign that is not in draft status")
			return
		}
		s.campaigns = append(s.campaigns[:i], s.campaigns[i+1:]...)
		delete(s.content, id)
		httputil.NoContent(w)
		return
	}
	httputil.NotFound(w, "Campaign not found")
}

func (s *store) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findCampaign(r.PathValue("id"))
	if c == nil {
		httputil.NotFound(w, "Campaign not found")
		return
	}
	if c.Status != "sent" || c.ReportSummary == nil {
		httputil.NotFound(w, "Campaign has not been sent")
		return
	}

	sum := c.ReportSummary
	httputil.OK(w, mailchimp.Report{
		ID:            c.ID,
		CampaignTitle: c.Settings.Title,
		Type:          c.Type,
		ListID:        c.Recipients.ListID,
		ListName:      c.Recipients.ListName,
		SubjectLine:   c.Settings.SubjectLine,
		EmailsSent:    c.EmailsSent,
		AbuseReports:  0,
		Unsubscribed:  c.EmailsSent / 250,
		SendTime:      c.SendTime,
		Bounces: &mailchimp.ReportBounces{
			HardBounces: c.EmailsSent / 500,
			SoftBounces: c.EmailsSent / 200,
		},
		Opens: &mailchimp.ReportOpens{
			OpensTotal:  sum.Opens,
			UniqueOpens: sum.UniqueOpens,
			OpenRate:    sum.OpenRate,
			LastOpen:    c.SendTime,
		},
		Clicks: &mailchimp.ReportClicks{
			ClicksTotal:            sum.Clicks,
			UniqueClicks:           sum.SubscriberClicks,
			UniqueSubscriberClicks: sum.SubscriberClicks,
			ClickRate:              sum.ClickRate,
			LastClick:              c.SendTime,
		},
	})
}

// synthSummary fabricates delivery stats proportional to the send size.
func synthSummary(emailsSent int) *mailchimp.ReportSummary {
	if emailsSent == 0 {
		return &mailchimp.ReportSummary{}
	}
	opens := emailsSent * 42 / 100
	uniqueOpens := opens * 70 / 100
	clicks := emailsSent * 8 / 100
	subClicks := clicks * 80 / 100
	return &mailchimp.ReportSummary{
		Opens:            opens,
		UniqueOpens:      uniqueOpens,
		OpenRate:         float64(uniqueOpens) / float64(emailsSent),
		Clicks:           clicks,
		SubscriberClicks: subClicks,
		ClickRate:        float64(subClicks) / float64(emailsSent),
	}
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  WARNING: This is a STUB Mailchimp API for local testing. ║")
	log.Println("║  State is in-memory and lost on restart.                  ║")
	log.Println("║                                                           ║")
	log.Println("║  Point the gateway at it with:                            ║")
	log.Println("║    MAILCHIMP_BASE_URL=http://localhost:8900/3.0           ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")
	log.Println("")
	log.Println("Starting STUB Mailchimp API (in-memory state)...")

	st := newStore()

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"mailchimp-stub-api","warning":"THIS IS A STUB - state is in-memory"}`))
	})

	mux.HandleFunc("GET /3.0/lists", st.handleLists)
	mux.HandleFunc("GET /3.0/campaigns", st.handleListCampaigns)
	mux.HandleFunc("POST /3.0/campaigns", st.handleCreateCampaign)
	mux.HandleFunc("PUT /3.0/campaigns/{id}/content", st.handleSetContent)
	mux.HandleFunc("POST /3.0/campaigns/{id}/actions/test", st.handleTestSend)
	mux.HandleFunc("POST /3.0/campaigns/{id}/actions/send", st.handleSend)
	mux.HandleFunc("POST /3.0/campaigns/{id}/actions/schedule", st.handleSchedule)
	mux.HandleFunc("DELETE /3.0/campaigns/{id}", st.handleDelete)
	mux.HandleFunc("GET /3.0/reports/{id}", st.handleReport)

	handler := corsMiddleware(authMiddleware(mux))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8900"
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// authMiddleware mirrors the real API's bearer requirement so the
// gateway's auth plumbing can be exercised locally. /health stays open.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			httputil.Error(w, http.StatusUnauthorized, "API key missing")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("X-Server-Identity", "mailchimp-stub-api")
		w.Header().Set("X-Server-Warning", "STUB - in-memory state only")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
