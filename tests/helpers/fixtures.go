package helpers

import (
	"github.com/mashreq/docs-platform/doc-orchestrator/internal/models"
)

// TestUser represents a test user fixture
type TestUser struct {
	Email    string
	Password string
}

// DefaultTestUser is the standard login fixture for integration tests
var DefaultTestUser = TestUser{
	Email:    "test@example.com",
	Password: "test-password-123",
}

// SampleProjectFiles returns a small processed upload set covering source
// code, configuration, and documentation categories.
func SampleProjectFiles() []models.FileRecord {
	return []models.FileRecord{
		{
			Name:    "main.py",
			Size:    64,
			Type:    "text/x-python",
			Content: "import flask\n\napp = flask.Flask(__name__)\n",
		},
		{
			Name:    "settings.yaml",
			Size:    32,
			Type:    "application/yaml",
			Content: "debug: false\nport: 8080\n",
		},
		{
			Name:    "README.md",
			Size:    48,
			Type:    "text/markdown",
			Content: "# Sample Service\n\nA small flask backend.\n",
		},
	}
}

// CreateTestLoginRequest creates a login request payload
func CreateTestLoginRequest(email, password string) map[string]interface{} {
	return map[string]interface{}{
		"email":    email,
		"password": password,
	}
}
