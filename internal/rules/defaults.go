package rules

// DefaultSpecs is the built-in conversation set.
func DefaultSpecs() []Spec {
	return []Spec{
		{Pattern: `hi|hello|hey`, Responses: []string{"Hello!", "Hi there!", "Hey! How can I help?"}},
		{Pattern: `how are you`, Responses: []string{"I'm a bot, but I'm functioning perfectly!"}},
		{Pattern: `what is your name\??`, Responses: []string{"I'm your speech-enabled chatbot."}},
		{Pattern: `what (.*) do you (.*)`, Responses: []string{"I'm trained to help you with basic conversations."}},
		{Pattern: `(.*) (weather|time|news)`, Responses: []string{"I'm a simple bot and don't have access to real-time info."}},
		{Pattern: `quit`, Responses: []string{"Goodbye!"}},
	}
}

func Default(opts ...Option) *Responder {
	r, err := Compile(DefaultSpecs(), opts...)
	if err != nil {
		panic(err)
	}
	return r
}
