package supabase

import "github.com/supabase-community/postgrest-go"

// Client builds PostgREST clients for the service role.
type Client struct {
	baseURL    string
	serviceKey string
}

func NewClient(baseURL, serviceKey string) *Client {
	return &Client{baseURL: baseURL, serviceKey: serviceKey}
}

// rest returns a fresh PostgREST client; query builders must not be shared.
func (c *Client) rest() *postgrest.Client {
	client := postgrest.NewClient(c.baseURL+"/rest/v1", "", map[string]string{
		"apikey": c.serviceKey,
	})
	client.SetAuthToken(c.serviceKey)
	return client
}
