package ops

import "context"

const (
	startText    = "👋 Hello! Thanks for chatting with me! I'm RTUServiceBot, your assistant for RTU services."
	customerText = "📞 RTUServiceBot Customer Service:\n" +
		"Email: support@rtuservicebot.com\n" +
		"Phone: +855 123 456 789"
)

// StartOp greets a new user.
type StartOp struct{}

func (s *StartOp) Name() string        { return "start" }
func (s *StartOp) Description() string { return "Start talking to the bot" }

func (s *StartOp) Execute(_ context.Context, _ string) (string, error) {
	return startText, nil
}

// CustomerOp returns customer service contact details.
type CustomerOp struct{}

func (c *CustomerOp) Name() string        { return "customer" }
func (c *CustomerOp) Description() string { return "Get customer service info for RTUServiceBot" }

func (c *CustomerOp) Execute(_ context.Context, _ string) (string, error) {
	return customerText, nil
}

// RegisterDefaults registers /start, /help and /customer, in that order.
func RegisterDefaults(r *Registry) error {
	for _, op := range []Op{&StartOp{}, &HelpOp{Registry: r}, &CustomerOp{}} {
		if err := r.Register(op); err != nil {
			return err
		}
	}
	return nil
}
