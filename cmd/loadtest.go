package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// LoadTestConfig holds configuration for load testing
type LoadTestConfig struct {
	BaseURL     string
	Capacity    int
	Extra       int
	Concurrency int
	Timeout     time.Duration
}

// LoadTestResult holds the results of load testing
type LoadTestResult struct {
	TotalRequests     int
	Accepted          int
	RejectedFull      int
	FailedReqs        int
	AvgResponseTimeMs float64
	MaxResponseTimeMs int64
	MinResponseTimeMs int64
	ThroughputRPS     float64
	ErrorsByType      map[string]int
	FinalOccupancy    int
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
}

type account struct {
	ID    string
	Token string
}

// LoadTester registers capacity+extra students to one course at once and
// checks that exactly capacity of them get in.
type LoadTester struct {
	config   LoadTestConfig
	client   *resty.Client
	runID    string
	courseID string
	students []account
	results  LoadTestResult
	mutex    sync.Mutex
}

// NewLoadTester creates a new load tester
func NewLoadTester(config LoadTestConfig) *LoadTester {
	return &LoadTester{
		config: config,
		client: resty.New().
			SetBaseURL(strings.TrimRight(config.BaseURL, "/") + "/api/v1").
			SetTimeout(config.Timeout).
			SetHeader("Content-Type", "application/json"),
		runID: uuid.NewString()[:8],
		results: LoadTestResult{
			ErrorsByType: make(map[string]int),
		},
	}
}

func (lt *LoadTester) call(method, path, token string, body any, status int) (json.RawMessage, error) {
	var out envelope
	req := lt.client.R().SetResult(&out).SetError(&out)
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != status {
		return nil, fmt.Errorf("%s %s: status %d (%s: %s)", method, path, resp.StatusCode(), out.Code, out.Message)
	}
	return out.Data, nil
}

func (lt *LoadTester) signUp(i int, role string) (account, error) {
	email := fmt.Sprintf("loadtest-%s-%d@example.com", lt.runID, i)
	password := "loadtest-" + lt.runID

	data, err := lt.call(http.MethodPost, "/auth/register", "", map[string]any{
		"full_name": fmt.Sprintf("Load Test %d", i),
		"email":     email,
		"phone":     fmt.Sprintf("05%08d", i),
		"password":  password,
		"role":      role,
	}, http.StatusCreated)
	if err != nil {
		return account{}, err
	}

	var user struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &user); err != nil {
		return account{}, err
	}

	data, err = lt.call(http.MethodPost, "/auth/login", "", map[string]any{
		"email":    email,
		"password": password,
	}, http.StatusOK)
	if err != nil {
		return account{}, err
	}

	var login struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &login); err != nil {
		return account{}, err
	}
	return account{ID: user.ID, Token: login.Token}, nil
}

// Initialize creates an instructor, one course of the configured capacity and
// the student accounts.
func (lt *LoadTester) Initialize() error {
	fmt.Println("Initializing load test data...")

	instructorUser, err := lt.signUp(0, "Instructor")
	if err != nil {
		return fmt.Errorf("failed to create instructor account: %w", err)
	}

	data, err := lt.call(http.MethodPost, "/instructors", instructorUser.Token, map[string]any{
		"user_id":   instructorUser.ID,
		"work_area": "Load testing",
	}, http.StatusCreated)
	if err != nil {
		return fmt.Errorf("failed to create instructor profile: %w", err)
	}
	var instructor struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &instructor); err != nil {
		return err
	}

	data, err = lt.call(http.MethodPost, "/courses", instructorUser.Token, map[string]any{
		"title":            "Load test " + lt.runID,
		"description":      "Capacity contention run",
		"price":            0,
		"category":         "Learning",
		"target_audience":  "Everyone",
		"creator":          map[string]string{"id": instructor.ID, "type": "Instructor"},
		"max_participants": lt.config.Capacity,
	}, http.StatusCreated)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	var course struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &course); err != nil {
		return err
	}
	lt.courseID = course.ID

	total := lt.config.Capacity + lt.config.Extra
	lt.students = make([]account, total)
	errs := make([]error, total)

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, lt.config.Concurrency)
	for i := 0; i < total; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()
			lt.students[i], errs[i] = lt.signUp(i+1, "Student")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("failed to create student account: %w", err)
		}
	}

	fmt.Printf("Created course %s with %d seats and %d students\n", lt.courseID, lt.config.Capacity, total)
	return nil
}

// RunLoadTest releases every registration request at the same moment.
func (lt *LoadTester) RunLoadTest() {
	fmt.Printf("Registering %d students concurrently...\n", len(lt.students))

	start := make(chan struct{})
	var wg sync.WaitGroup
	for _, student := range lt.students {
		wg.Add(1)
		go func(student account) {
			defer wg.Done()
			<-start
			lt.register(student)
		}(student)
	}

	began := time.Now()
	close(start)
	wg.Wait()
	lt.results.ThroughputRPS = float64(lt.results.TotalRequests) / time.Since(began).Seconds()

	lt.results.FinalOccupancy = lt.finalOccupancy()

	lt.printResults()
}

// finalOccupancy reads the course counter after the run, or -1 when it
// cannot be read.
func (lt *LoadTester) finalOccupancy() int {
	data, err := lt.call(http.MethodGet, "/courses/"+lt.courseID, "", nil, http.StatusOK)
	if err != nil {
		fmt.Printf("Failed to read final course state: %v\n", err)
		return -1
	}

	var course struct {
		CurrentParticipants *int `json:"current_participants"`
	}
	if err := json.Unmarshal(data, &course); err != nil {
		fmt.Printf("Failed to decode final course state: %v\n", err)
		return -1
	}
	if course.CurrentParticipants == nil {
		fmt.Printf("Final course state has no current_participants: %s\n", data)
		return -1
	}
	return *course.CurrentParticipants
}

func (lt *LoadTester) register(student account) {
	var out envelope
	startTime := time.Now()
	resp, err := lt.client.R().
		SetAuthToken(student.Token).
		SetHeader("Idempotency-Key", uuid.NewString()).
		SetBody(map[string]string{"student_id": student.ID, "course_id": lt.courseID}).
		SetResult(&out).
		SetError(&out).
		Post("/registrations")
	responseTime := time.Since(startTime)

	lt.mutex.Lock()
	defer lt.mutex.Unlock()

	lt.results.TotalRequests++
	if err != nil {
		lt.results.FailedReqs++
		lt.results.ErrorsByType["http_request"]++
		return
	}

	ms := responseTime.Milliseconds()
	if lt.results.MaxResponseTimeMs < ms {
		lt.results.MaxResponseTimeMs = ms
	}
	if lt.results.MinResponseTimeMs == 0 || lt.results.MinResponseTimeMs > ms {
		lt.results.MinResponseTimeMs = ms
	}
	n := float64(lt.results.TotalRequests)
	lt.results.AvgResponseTimeMs = (lt.results.AvgResponseTimeMs*(n-1) + float64(ms)) / n

	switch {
	case resp.StatusCode() == http.StatusCreated:
		lt.results.Accepted++
	case resp.StatusCode() == http.StatusUnprocessableEntity && out.Code == "course_full":
		lt.results.RejectedFull++
	default:
		lt.results.FailedReqs++
		lt.results.ErrorsByType[fmt.Sprintf("http_%d_%s", resp.StatusCode(), out.Code)]++
	}
}

// printResults displays the load test results
func (lt *LoadTester) printResults() {
	r := lt.results
	fmt.Println("\n" + strings.Repeat("=", 60))

	fmt.Printf("Test Configuration:\n")
	fmt.Printf("  - Course Capacity: %d\n", lt.config.Capacity)
	fmt.Printf("  - Students: %d\n", len(lt.students))

	fmt.Printf("\nOutcome:\n")
	fmt.Printf("  - Accepted: %d\n", r.Accepted)
	fmt.Printf("  - Rejected (course full): %d\n", r.RejectedFull)
	fmt.Printf("  - Failed: %d\n", r.FailedReqs)
	fmt.Printf("  - Final occupancy: %d\n", r.FinalOccupancy)

	fmt.Printf("\nResponse Time Metrics:\n")
	fmt.Printf("  - Average: %.2f ms\n", r.AvgResponseTimeMs)
	fmt.Printf("  - Minimum: %d ms\n", r.MinResponseTimeMs)
	fmt.Printf("  - Maximum: %d ms\n", r.MaxResponseTimeMs)
	fmt.Printf("  - Requests per Second: %.2f\n", r.ThroughputRPS)

	if len(r.ErrorsByType) > 0 {
		fmt.Printf("\nError Breakdown:\n")
		for errorType, count := range r.ErrorsByType {
			fmt.Printf("  - %s: %d\n", errorType, count)
		}
	}

	fmt.Println()
	if r.Accepted == lt.config.Capacity && r.FinalOccupancy == lt.config.Capacity && r.FailedReqs == 0 {
		fmt.Println("PASS: capacity held under contention")
	} else {
		fmt.Println("FAIL: accepted registrations do not match capacity")
	}
}

// loadtestCmd represents the loadtest command
var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Hammer one course with concurrent registrations",
	Long: `Create one course with --capacity seats, sign up capacity+extra students,
then register all of them at the same time and report how many got in.
The server must be running and reachable at --url.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLoadTest()
	},
}

var (
	baseURL         string
	loadCapacity    int
	loadExtra       int
	concurrentUsers int
	requestTimeout  time.Duration
)

func init() {
	rootCmd.AddCommand(loadtestCmd)

	loadtestCmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the API")
	loadtestCmd.Flags().IntVar(&loadCapacity, "capacity", 50, "Seats in the test course")
	loadtestCmd.Flags().IntVar(&loadExtra, "extra", 25, "Students beyond capacity")
	loadtestCmd.Flags().IntVar(&concurrentUsers, "concurrent", 20, "Parallel requests while creating accounts")
	loadtestCmd.Flags().DurationVar(&requestTimeout, "timeout", 30*time.Second, "Per-request timeout")
}

func runLoadTest() error {
	if loadCapacity < 1 || loadExtra < 0 || concurrentUsers < 1 {
		return fmt.Errorf("capacity and concurrent must be positive and extra non-negative")
	}

	loadTester := NewLoadTester(LoadTestConfig{
		BaseURL:     baseURL,
		Capacity:    loadCapacity,
		Extra:       loadExtra,
		Concurrency: concurrentUsers,
		Timeout:     requestTimeout,
	})

	fmt.Println("Course Registration Load Test")
	fmt.Println("=============================")

	if err := loadTester.Initialize(); err != nil {
		return err
	}
	loadTester.RunLoadTest()
	return nil
}
