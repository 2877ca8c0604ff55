package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadilmartias/resume-analyzer/internal/client"
	"github.com/fadilmartias/resume-analyzer/internal/config"
	"github.com/fadilmartias/resume-analyzer/internal/gateway"
	"github.com/fadilmartias/resume-analyzer/internal/poller"
	"github.com/fadilmartias/resume-analyzer/internal/result"
	"github.com/fadilmartias/resume-analyzer/internal/session"
	"github.com/spf13/cobra"
)

func newAPIClient() *client.APIClient {
	return client.NewAPIClient(apiURL, 30*time.Second)
}

func newPoller(cmd *cobra.Command, api *client.APIClient) *poller.Poller {
	cfg := config.LoadPollerConfig()
	interval, _ := cmd.Flags().GetDuration("interval")
	maxAttempts, _ := cmd.Flags().GetInt("max-attempts")
	if interval <= 0 {
		interval = cfg.Interval
	}
	if maxAttempts <= 0 {
		maxAttempts = cfg.MaxAttempts
	}
	return poller.New(api, poller.Config{Interval: interval, MaxAttempts: maxAttempts})
}

func addPollFlags(cmd *cobra.Command) {
	cmd.Flags().Duration("interval", 0, "poll interval (default $POLL_INTERVAL or 2s)")
	cmd.Flags().Int("max-attempts", 0, "poll attempts before giving up (default $POLL_MAX_ATTEMPTS or 30)")
}

// --- submit ---

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a resume and wait for its analysis",
	Long: `Submit a resume and job description to the analysis workflow, then poll the
backend until the result is stored.

Examples:
  resumectl submit --name "Ana" --email ana@x.com --resume ./cv.pdf \
    --job-title "Backend Engineer" --company Acme --jd-file ./jd.txt
  resumectl submit ... --demo --pdf ./report.pdf`,
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		resume, _ := cmd.Flags().GetString("resume")
		jd, _ := cmd.Flags().GetString("jd")
		jdFile, _ := cmd.Flags().GetString("jd-file")
		jobTitle, _ := cmd.Flags().GetString("job-title")
		company, _ := cmd.Flags().GetString("company")
		demo, _ := cmd.Flags().GetBool("demo")
		wait, _ := cmd.Flags().GetBool("wait")
		pdfPath, _ := cmd.Flags().GetString("pdf")

		if jd == "" && jdFile != "" {
			data, err := os.ReadFile(jdFile)
			if err != nil {
				return fmt.Errorf("reading job description: %w", err)
			}
			jd = string(data)
		}

		sub := gateway.Submission{
			Name:            name,
			Email:           email,
			ResumePath:      resume,
			JobDescription:  jd,
			DesiredJobTitle: jobTitle,
			CompanyName:     company,
		}
		if resume != "" {
			if _, err := os.Stat(resume); err != nil {
				return fmt.Errorf("resume: %w", err)
			}
		}

		api := newAPIClient()
		gw, err := newGateway(api, demo)
		if err != nil {
			return err
		}

		if !wait {
			ack, err := gw.Submit(cmd.Context(), sub)
			if err != nil {
				return err
			}
			printSuccess("Submitted for %s; run `resumectl poll %s` for results", ack.Email, ack.Email)
			return nil
		}

		sess := session.New(gw, newPoller(cmd, api))
		sess.OnChange = printPhase

		st, err := sess.Run(cmd.Context(), sub)
		if err != nil {
			return err
		}
		return finish(cmd, api, st, pdfPath)
	},
}

func newGateway(api *client.APIClient, demo bool) (gateway.Gateway, error) {
	if demo {
		return gateway.NewDemoGateway(api), nil
	}
	cfg := config.LoadWebhookConfig()
	if cfg.URL == "" {
		return nil, errors.New("WEBHOOK_URL is not set; use --demo to run without the workflow")
	}
	return gateway.NewWebhookGateway(cfg), nil
}

func init() {
	submitCmd.Flags().String("name", "", "candidate name")
	submitCmd.Flags().String("email", "", "candidate email")
	submitCmd.Flags().String("resume", "", "path to the resume file")
	submitCmd.Flags().String("jd", "", "job description text")
	submitCmd.Flags().String("jd-file", "", "file containing the job description")
	submitCmd.Flags().String("job-title", "", "desired job title")
	submitCmd.Flags().String("company", "", "company name")
	submitCmd.Flags().Bool("demo", false, "generate a mock analysis instead of calling the webhook")
	submitCmd.Flags().Bool("wait", true, "poll until the analysis is available")
	submitCmd.Flags().String("pdf", "", "download the PDF report to this path once ready")
	addPollFlags(submitCmd)
}

// --- poll ---

var pollCmd = &cobra.Command{
	Use:   "poll <email>",
	Short: "Wait for the latest analysis of an email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		pdfPath, _ := cmd.Flags().GetString("pdf")

		api := newAPIClient()
		p := newPoller(cmd, api)

		task := p.Start(cmd.Context(), poller.Target{Email: args[0], Name: name}, func(a poller.Attempt) {
			printStep("Checking for results (attempt %d)", a.N)
		})
		out := task.Wait()

		st := session.State{Email: args[0], Attempts: out.Attempts, Err: out.Err}
		switch out.Status {
		case poller.StatusSucceeded:
			st.Phase = session.PhaseSucceeded
			r := result.Normalize(*out.Record)
			st.Result = &r
		case poller.StatusTimedOut:
			st.Phase = session.PhaseTimedOut
		case poller.StatusFailed:
			return out.Err
		default:
			st.Phase = session.PhaseCancelled
		}
		printPhase(st)
		return finish(cmd, api, st, pdfPath)
	},
}

func init() {
	pollCmd.Flags().String("name", "", "narrow to a candidate name")
	pollCmd.Flags().String("pdf", "", "download the PDF report to this path once ready")
	addPollFlags(pollCmd)
}

// --- pdf ---

var pdfCmd = &cobra.Command{
	Use:   "pdf <email>",
	Short: "Download the PDF report for an email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("output")
		return downloadPDF(cmd, newAPIClient(), args[0], out)
	},
}

func init() {
	pdfCmd.Flags().StringP("output", "o", "", "output path (default: server-provided filename)")
}

func finish(cmd *cobra.Command, api *client.APIClient, st session.State, pdfPath string) error {
	if st.Phase != session.PhaseSucceeded || st.Result == nil {
		return nil
	}
	printResults(cmd.OutOrStdout(), *st.Result)
	if pdfPath == "" {
		return nil
	}
	return downloadPDF(cmd, api, st.Email, pdfPath)
}

// downloadPDF writes the report only when the backend returned a real PDF.
func downloadPDF(cmd *cobra.Command, api *client.APIClient, email, out string) error {
	pdf, err := api.DownloadPDF(cmd.Context(), email)
	if err != nil {
		if errors.Is(err, client.ErrNotFoundYet) {
			return fmt.Errorf("no analysis found for %s", email)
		}
		return fmt.Errorf("downloading pdf: %w", err)
	}

	if out == "" {
		out = pdf.Filename
	} else if info, err := os.Stat(out); err == nil && info.IsDir() {
		out = filepath.Join(out, pdf.Filename)
	}
	if err := os.WriteFile(out, pdf.Content, 0o644); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	printSuccess("Saved report to %s", out)
	return nil
}
