package hello

// Greeting is the fixed message returned by the root endpoint.
const Greeting = "Hello from Jenkins Pipeline!"

// Data models the response payload for the greeting endpoint.
type Data struct {
	Message string `json:"message" doc:"Greeting message" example:"Hello from Jenkins Pipeline!"`
}

// GetOutput is the response for GET /.
type GetOutput struct {
	Body Data
}
