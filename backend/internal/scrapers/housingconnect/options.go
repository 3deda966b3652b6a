package housingconnect

import (
	"strings"
	"time"

	"github.com/ps-vitor/housingconnect-bot/backend/internal/config"
)

type Options struct {
	BaseURL      string
	LotteriesURL string
	DetailURL    string

	Username     string
	Password     string
	AnnualIncome int

	RequestsPerMinute float64
	Burst             int

	Waits  Waits
	Delays Delays
}

// Waits bound how long the bot polls for content to show up.
type Waits struct {
	Cards           time.Duration
	Detail          time.Duration
	List            time.Duration
	ListRetry       time.Duration
	LoginForm       time.Duration
	Dialog          time.Duration
	PollInterval    time.Duration
	PageChangePolls int
}

type Delays struct {
	PageLoad       Range
	TabSwitch      Range
	PageParse      Range
	Keystroke      Range
	LoginRedirect  Range
	DetailLoad     Range
	DetailRetry    Range
	DetailGrace    Range
	DetailSettle   Range
	ApplyClick     Range
	Submit         Range
	ListReturn     Range
	ListTab        Range
	PageTurn       Range
	RenavigatePage Range
	BetweenCards   Range
}

func (o Options) withDefaults() Options {
	base := strings.TrimRight(o.BaseURL, "/")
	if o.LotteriesURL == "" {
		o.LotteriesURL = base + "/search-lotteries"
	}
	if o.DetailURL == "" {
		o.DetailURL = base + "/lottery-details/"
	}
	return o
}

func OptionsFromConfig(hc config.HousingConnectConfig, creds config.Credentials) Options {
	rp := hc.RetryPolicy
	d := hc.Delays
	return Options{
		BaseURL:           hc.BaseURL,
		LotteriesURL:      hc.Endpoint("search"),
		DetailURL:         hc.Endpoint("detail"),
		Username:          creds.Username,
		Password:          creds.Password,
		AnnualIncome:      creds.AnnualIncome,
		RequestsPerMinute: hc.RateLimit.RequestsPerMinute,
		Burst:             hc.RateLimit.Burst,
		Waits: Waits{
			Cards:           rp.CardsTimeout.Std(),
			Detail:          rp.DetailTimeout.Std(),
			List:            rp.ListTimeout.Std(),
			ListRetry:       rp.ListRetryTimeout.Std(),
			LoginForm:       rp.LoginFormTimeout.Std(),
			Dialog:          rp.DialogTimeout.Std(),
			PollInterval:    rp.PollInterval.Std(),
			PageChangePolls: rp.PageChangePolls,
		},
		Delays: Delays{
			PageLoad:       delay(d.PageLoad),
			TabSwitch:      delay(d.TabSwitch),
			PageParse:      delay(d.PageParse),
			Keystroke:      delay(d.Keystroke),
			LoginRedirect:  delay(d.LoginRedirect),
			DetailLoad:     delay(d.DetailLoad),
			DetailRetry:    delay(d.DetailRetry),
			DetailGrace:    delay(d.DetailGrace),
			DetailSettle:   delay(d.DetailSettle),
			ApplyClick:     delay(d.ApplyClick),
			Submit:         delay(d.Submit),
			ListReturn:     delay(d.ListReturn),
			ListTab:        delay(d.ListTab),
			PageTurn:       delay(d.PageTurn),
			RenavigatePage: delay(d.RenavigatePage),
			BetweenCards:   delay(d.BetweenCards),
		},
	}
}

func RodOptionsFromConfig(hc config.HousingConnectConfig) RodOptions {
	b := hc.Browser
	return RodOptions{
		Bin:            b.Bin,
		Headless:       b.Headless,
		SlowMotion:     b.SlowMotion.Std(),
		ViewportWidth:  b.ViewportWidth,
		ViewportHeight: b.ViewportHeight,
		DefaultTimeout: b.DefaultTimeout.Std(),
		UserAgent:      hc.UserAgent,
	}
}

func delay(r config.DelayRange) Range {
	return Range{Min: r.Min.Std(), Max: r.Max.Std()}
}
