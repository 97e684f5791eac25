package confloader

// Alias maps legacy environment variables onto a configuration key.
// The first variable that is set wins.
type Alias struct {
	Key  string
	Vars []string

	// Transform rewrites the raw value. Optional.
	Transform func(string) string
}

// LegacyAliases are the variable names used by earlier deployments.
var LegacyAliases = []Alias{
	{Key: "security.csrf.secret", Vars: []string{"CSRF_SECRET"}},
	{Key: "chat.openai.apikey", Vars: []string{"OPENAI_API_KEY", "MY_OPENAI_API_KEY"}},
	{Key: "chat.speech.apikey", Vars: []string{"ELEVENLABS_API_KEY"}},
	{Key: "aws.region", Vars: []string{"AWS_REGION", "MY_AWS_REGION"}},
	{Key: "aws.bucket", Vars: []string{"AWS_S3_BUCKET", "MY_AWS_S3_BUCKET"}},
	{Key: "aws.accesskeyid", Vars: []string{"AWS_ACCESS_KEY_ID", "MY_AWS_ACCESS_KEY_ID"}},
	{Key: "aws.secretaccesskey", Vars: []string{"AWS_SECRET_ACCESS_KEY", "MY_AWS_SECRET_ACCESS_KEY"}},
	{Key: "app.env", Vars: []string{"NODE_ENV", "APP_ENV"}},
	{Key: "server.http.addr", Vars: []string{"PORT"}, Transform: func(v string) string { return ":" + v }},
}

func resolveAliases(aliases []Alias, lookup func(string) (string, bool)) map[string]any {
	data := make(map[string]any)
	for _, a := range aliases {
		for _, name := range a.Vars {
			v, ok := lookup(name)
			if !ok || v == "" {
				continue
			}
			if a.Transform != nil {
				v = a.Transform(v)
			}
			data[a.Key] = v
			break
		}
	}
	return data
}
