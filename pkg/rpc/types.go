// Package rpc exposes workflow triggering over gRPC.
//
// Messages are plain Go structs carried by a JSON codec, so no protoc step is
// needed to build the service.
package rpc

// KeyValue is a single trigger parameter or argument.
type KeyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TriggerRequest is the request for the TriggerWorkflow RPC.
type TriggerRequest struct {
	WorkflowName string     `json:"workflow_name"`
	Tags         []string   `json:"tags,omitempty"`
	Parameters   []KeyValue `json:"parameters,omitempty"`
	Args         []KeyValue `json:"args,omitempty"`
}

// TriggerResponse is the response from the TriggerWorkflow RPC.
type TriggerResponse struct {
	UUID string `json:"uuid"`
}

// toMap folds a key/value list into a map. Later entries win on duplicate keys.
func toMap(pairs []KeyValue) map[string]string {
	result := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		result[pair.Key] = pair.Value
	}

	return result
}
