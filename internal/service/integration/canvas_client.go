package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
)

// ErrAuthRedirect is returned when Canvas answers with HTML instead of JSON,
// which is what an expired or missing token looks like: the request gets
// redirected to the institution's login page.
var ErrAuthRedirect = errors.New("canvas returned non-JSON response, check API token")

type CanvasClient interface {
	GetCourse(ctx context.Context, courseID int64) (*models.Course, error)
	GetActiveStudents(ctx context.Context, courseID int64) ([]models.Enrollment, error)
	GetAssignments(ctx context.Context, courseID int64) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, courseID, assignmentID int64) (*models.Assignment, error)
	GetSubmissions(ctx context.Context, courseID, assignmentID int64) ([]models.Submission, error)
	GetDiscussionTopics(ctx context.Context, courseID int64) ([]models.DiscussionTopic, error)
	GetDiscussionEntries(ctx context.Context, courseID, topicID int64) ([]models.DiscussionEntry, error)
	UpdateGrades(ctx context.Context, courseID, assignmentID int64, grades map[string]string) error
	DownloadAttachment(ctx context.Context, fileURL string) ([]byte, error)
}

type canvasClient struct {
	baseURL      string
	token        string
	retryCount   int
	retryDelay   time.Duration
	pollInterval time.Duration
	client       *http.Client
	logger       zerolog.Logger
}

func NewCanvasClient(baseURL, token string, timeout time.Duration, retryCount int, retryDelay time.Duration, logger zerolog.Logger) CanvasClient {
	return &canvasClient{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		retryCount:   retryCount,
		retryDelay:   retryDelay,
		pollInterval: 3 * time.Second,
		client: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// getJSON runs one GET with the retry loop and decodes the body into out.
func (c *canvasClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Str("path", path).Msg("Retrying Canvas request")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Authorization", "Bearer "+c.token)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to call canvas: %w", err)
			continue
		}

		if !strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
			resp.Body.Close()
			return ErrAuthRedirect
		}

		if resp.StatusCode == http.StatusOK {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				resp.Body.Close()
				lastErr = fmt.Errorf("failed to decode response: %w", err)
				continue
			}
			resp.Body.Close()
			return nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("canvas returned status %d: %s", resp.StatusCode, string(body))
		}
		lastErr = fmt.Errorf("canvas returned status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("canvas request failed after %d attempts: %w", c.retryCount+1, lastErr)
}

// GetCourse doubles as the access check: an invalid token comes back as
// ErrAuthRedirect before any other call is attempted.
func (c *canvasClient) GetCourse(ctx context.Context, courseID int64) (*models.Course, error) {
	var course models.Course
	path := fmt.Sprintf("/api/v1/courses/%d", courseID)
	if err := c.getJSON(ctx, path, nil, &course); err != nil {
		return nil, err
	}
	c.logger.Debug().Int64("course_id", course.ID).Str("name", course.Name).Msg("Canvas access verified")
	return &course, nil
}

func (c *canvasClient) GetActiveStudents(ctx context.Context, courseID int64) ([]models.Enrollment, error) {
	params := url.Values{}
	params.Add("type[]", "StudentEnrollment")
	params.Add("state[]", "active")
	params.Set("per_page", "100")

	var enrollments []models.Enrollment
	path := fmt.Sprintf("/api/v1/courses/%d/enrollments", courseID)
	if err := c.getJSON(ctx, path, params, &enrollments); err != nil {
		return nil, fmt.Errorf("failed to fetch enrollments: %w", err)
	}

	c.logger.Info().Int("count", len(enrollments)).Msg("Fetched active students")
	return enrollments, nil
}

func (c *canvasClient) GetAssignments(ctx context.Context, courseID int64) ([]models.Assignment, error) {
	params := url.Values{}
	params.Set("per_page", "100")

	var assignments []models.Assignment
	path := fmt.Sprintf("/api/v1/courses/%d/assignments", courseID)
	if err := c.getJSON(ctx, path, params, &assignments); err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}
	return assignments, nil
}

func (c *canvasClient) GetAssignment(ctx context.Context, courseID, assignmentID int64) (*models.Assignment, error) {
	var assignment models.Assignment
	path := fmt.Sprintf("/api/v1/courses/%d/assignments/%d", courseID, assignmentID)
	if err := c.getJSON(ctx, path, nil, &assignment); err != nil {
		return nil, fmt.Errorf("failed to fetch assignment %d: %w", assignmentID, err)
	}
	return &assignment, nil
}

func (c *canvasClient) GetSubmissions(ctx context.Context, courseID, assignmentID int64) ([]models.Submission, error) {
	params := url.Values{}
	params.Add("include[]", "attachments")
	params.Add("include[]", "user")
	params.Set("per_page", "100")

	var submissions []models.Submission
	path := fmt.Sprintf("/api/v1/courses/%d/assignments/%d/submissions", courseID, assignmentID)
	if err := c.getJSON(ctx, path, params, &submissions); err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	c.logger.Debug().
		Int64("assignment_id", assignmentID).
		Int("count", len(submissions)).
		Msg("Fetched submissions")
	return submissions, nil
}

func (c *canvasClient) GetDiscussionTopics(ctx context.Context, courseID int64) ([]models.DiscussionTopic, error) {
	params := url.Values{}
	params.Set("per_page", "100")

	var topics []models.DiscussionTopic
	path := fmt.Sprintf("/api/v1/courses/%d/discussion_topics", courseID)
	if err := c.getJSON(ctx, path, params, &topics); err != nil {
		return nil, fmt.Errorf("failed to fetch discussion topics: %w", err)
	}
	return topics, nil
}

func (c *canvasClient) GetDiscussionEntries(ctx context.Context, courseID, topicID int64) ([]models.DiscussionEntry, error) {
	var view struct {
		View []models.DiscussionEntry `json:"view"`
	}
	path := fmt.Sprintf("/api/v1/courses/%d/discussion_topics/%d/view", courseID, topicID)
	if err := c.getJSON(ctx, path, nil, &view); err != nil {
		return nil, fmt.Errorf("failed to fetch discussion %d: %w", topicID, err)
	}
	return view.View, nil
}

// UpdateGrades posts the grade batch and waits for Canvas's background job
// to finish. A missing job ID means Canvas applied the grades immediately.
func (c *canvasClient) UpdateGrades(ctx context.Context, courseID, assignmentID int64, grades map[string]string) error {
	if len(grades) == 0 {
		return nil
	}

	gradeData := make(map[string]map[string]string, len(grades))
	for userID, grade := range grades {
		gradeData[userID] = map[string]string{"posted_grade": grade}
	}
	payload, err := json.Marshal(map[string]any{"grade_data": gradeData})
	if err != nil {
		return fmt.Errorf("failed to marshal grade payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/api/v1/courses/%d/assignments/%d/submissions/update_grades",
		c.baseURL, courseID, assignmentID)

	var progress struct {
		ID int64 `json:"id"`
	}
	var lastErr error
	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Msg("Retrying grade submission")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewBuffer(payload))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to submit grades: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			err := json.NewDecoder(resp.Body).Decode(&progress)
			resp.Body.Close()
			if err != nil || progress.ID == 0 {
				c.logger.Debug().Msg("No grade job ID, assuming immediate success")
				return nil
			}
			return c.waitForProgress(ctx, progress.ID)
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("canvas returned status %d: %s", resp.StatusCode, string(body))
	}

	return fmt.Errorf("failed to submit grades after %d attempts: %w", c.retryCount+1, lastErr)
}

func (c *canvasClient) waitForProgress(ctx context.Context, jobID int64) error {
	c.logger.Info().Int64("job_id", jobID).Msg("Waiting for grade job")
	path := "/api/v1/progress/" + strconv.FormatInt(jobID, 10)

	for {
		var status struct {
			WorkflowState string `json:"workflow_state"`
			Message       string `json:"message"`
		}
		if err := c.getJSON(ctx, path, nil, &status); err != nil {
			return fmt.Errorf("failed to check grade job %d: %w", jobID, err)
		}

		switch status.WorkflowState {
		case "completed":
			c.logger.Info().Int64("job_id", jobID).Msg("Grade update completed")
			return nil
		case "failed":
			return fmt.Errorf("grade job %d failed: %s", jobID, status.Message)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.pollInterval):
		}
	}
}

// DownloadAttachment fetches a submission attachment. Canvas file URLs are
// pre-signed, so no Authorization header is sent.
func (c *canvasClient) DownloadAttachment(ctx context.Context, fileURL string) ([]byte, error) {
	var lastErr error
	for i := 0; i <= c.retryCount; i++ {
		if i > 0 {
			c.logger.Warn().Int("attempt", i).Msg("Retrying attachment download")
			time.Sleep(c.retryDelay * time.Duration(i))
		}

		req, err := http.NewRequestWithContext(ctx, "GET", fileURL, nil)
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to download attachment: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusOK {
			content, err := io.ReadAll(resp.Body)
			resp.Body.Close()
			if err != nil {
				lastErr = fmt.Errorf("failed to read attachment body: %w", err)
				continue
			}
			return content, nil
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		lastErr = fmt.Errorf("attachment download returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil, fmt.Errorf("failed to download attachment after %d attempts: %w", c.retryCount+1, lastErr)
}
