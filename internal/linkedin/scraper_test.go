package linkedin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-scraper/internal/fetch"
)

const profileURL = "https://www.linkedin.com/in/jane-doe/"

const profilePage = `
<html><body>
	<main>
		<h1 class="text-heading-xlarge"> Jane Doe </h1>
		<div class="text-body-medium">Staff Engineer at Acme</div>
		<section>
			<div id="experience"></div>
			<ul>
				<li class="artdeco-list__item">
					<span>Staff Engineer</span><span>Acme Corp</span><span>Acme Corp</span>
					<span>Full-time</span><span>2021 - Present</span><span>Runs the platform team</span>
				</li>
				<li class="artdeco-list__item"><span>Engineer</span><span>Initech</span></li>
			</ul>
		</section>
	</main>
</body></html>`

const skillsPage = `
<html><body>
	<div class="display-flex align-items-center mr1 hoverable-link-text"><span aria-hidden="true">Go</span><span class="visually-hidden">Go</span></div>
	<div class="display-flex align-items-center mr1 hoverable-link-text"><span aria-hidden="true">Kubernetes</span></div>
	<div class="display-flex align-items-center mr1 hoverable-link-text"><span aria-hidden="true">go</span></div>
	<div class="display-flex align-items-center mr1 hoverable-link-text"><span aria-hidden="true">Jane Doe</span></div>
	<div class="display-flex align-items-center mr1 hoverable-link-text"><span aria-hidden="true">(she/her)</span></div>
	<div class="display-flex align-items-center mr1 hoverable-link-text"><span aria-hidden="true">Rust</span></div>
</body></html>`

// fakeSession is an in-memory browser tab serving canned pages per URL
type fakeSession struct {
	mu sync.Mutex

	pages       map[string]string
	navErrors   map[string]error
	htmlPanic   bool
	afterSubmit string

	current     string
	navigations []string
	scrolls     []float64
	typed       map[string]string
	closes      int
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		pages: map[string]string{
			DefaultLoginURL:       `<html><body><input id="username"><input id="password"></body></html>`,
			profileURL:            profilePage,
			SkillsURL(profileURL): skillsPage,
		},
		navErrors:   map[string]error{},
		afterSubmit: "https://www.linkedin.com/feed/",
		typed:       map[string]string{},
	}
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.navigations = append(f.navigations, url)
	if err := f.navErrors[url]; err != nil {
		return err
	}
	f.current = url
	return nil
}

func (f *fakeSession) WaitReady(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

func (f *fakeSession) SendKeys(_ context.Context, selector, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typed[selector] = text
	return nil
}

func (f *fakeSession) Click(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = f.afterSubmit
	return nil
}

func (f *fakeSession) ScrollTo(_ context.Context, fraction float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scrolls = append(f.scrolls, fraction)
	return nil
}

func (f *fakeSession) Location(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current, nil
}

func (f *fakeSession) HTML(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.htmlPanic {
		panic("renderer crashed")
	}
	return f.pages[f.current], nil
}

func (f *fakeSession) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

// fakeLauncher counts launches and hands out one session
type fakeLauncher struct {
	session  *fakeSession
	err      error
	launches int
}

func (l *fakeLauncher) Launch(_ context.Context) (fetch.Session, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

func zeroTiming() Timing {
	return Timing{}
}

func testCredentials() Credentials {
	return Credentials{Email: "jane@example.com", Password: "hunter2"}
}

func TestScrape_MissingCredentialsNeverLaunches(t *testing.T) {
	session := newFakeSession()
	launcher := &fakeLauncher{session: session}

	scraper := New(launcher, Credentials{Email: "jane@example.com"}, WithTiming(zeroTiming()))
	result := scraper.Scrape(context.Background(), profileURL)

	assert.False(t, result.IsOK())
	assert.Contains(t, result.Err, "credentials")
	assert.Equal(t, 0, launcher.launches)
	assert.Empty(t, session.navigations)
	assert.Equal(t, 0, session.closes)
}

func TestScrape_Success(t *testing.T) {
	session := newFakeSession()
	launcher := &fakeLauncher{session: session}

	scraper := New(launcher, testCredentials(), WithTiming(zeroTiming()))
	result := scraper.Scrape(context.Background(), profileURL)

	require.True(t, result.IsOK(), result.Err)
	profile := result.Profile

	assert.Equal(t, "Jane Doe", profile.Name)
	assert.Equal(t, "Staff Engineer at Acme", profile.Headline)
	require.Len(t, profile.Experience, 2)
	assert.Equal(t, "Staff Engineer | Acme Corp | Acme Corp | Full-time | 2021 - Present | Runs the platform team", string(profile.Experience[0]))
	assert.Equal(t, "Engineer | Initech", string(profile.Experience[1]))
	assert.NotNil(t, profile.Education)
	assert.Empty(t, profile.Education)
	assert.Equal(t, []string{"Go", "Kubernetes", "Rust"}, profile.Skills)

	assert.Equal(t, []string{DefaultLoginURL, profileURL, SkillsURL(profileURL)}, session.navigations)
	assert.Equal(t, []float64{0.5, 1.0, 1.0, 1.0}, session.scrolls)
	assert.Equal(t, "jane@example.com", session.typed[usernameSelector])
	assert.Equal(t, "hunter2", session.typed[passwordSelector])
	assert.Equal(t, 1, session.closes)
}

func TestScrape_NavigationFailureIsErrAndReleasesSession(t *testing.T) {
	session := newFakeSession()
	session.navErrors[profileURL] = errors.New("net::ERR_CONNECTION_RESET")
	launcher := &fakeLauncher{session: session}

	result := New(launcher, testCredentials(), WithTiming(zeroTiming())).Scrape(context.Background(), profileURL)

	assert.False(t, result.IsOK())
	assert.Contains(t, result.Err, "LinkedIn scraping failed")
	assert.Contains(t, result.Err, "ERR_CONNECTION_RESET")
	assert.Equal(t, 1, session.closes)
}

func TestScrape_SkillsPageFailureYieldsNoSkills(t *testing.T) {
	session := newFakeSession()
	session.navErrors[SkillsURL(profileURL)] = errors.New("timeout")
	launcher := &fakeLauncher{session: session}

	result := New(launcher, testCredentials(), WithTiming(zeroTiming())).Scrape(context.Background(), profileURL)

	require.True(t, result.IsOK(), result.Err)
	assert.Equal(t, "Jane Doe", result.Profile.Name)
	assert.NotNil(t, result.Profile.Skills)
	assert.Empty(t, result.Profile.Skills)
	assert.Equal(t, 1, session.closes)
}

func TestScrape_PanicIsRecoveredAndSessionReleased(t *testing.T) {
	session := newFakeSession()
	session.htmlPanic = true
	launcher := &fakeLauncher{session: session}

	result := New(launcher, testCredentials(), WithTiming(zeroTiming())).Scrape(context.Background(), profileURL)

	assert.False(t, result.IsOK())
	assert.Contains(t, result.Err, "renderer crashed")
	assert.Equal(t, 1, session.closes)
}

func TestScrape_LaunchFailure(t *testing.T) {
	launcher := &fakeLauncher{err: errors.New("chrome not found")}

	result := New(launcher, testCredentials(), WithTiming(zeroTiming())).Scrape(context.Background(), profileURL)

	assert.False(t, result.IsOK())
	assert.Contains(t, result.Err, "chrome not found")
	assert.Equal(t, 1, launcher.launches)
}

func TestScrape_UnconfirmedLogin(t *testing.T) {
	t.Run("lenient continues", func(t *testing.T) {
		session := newFakeSession()
		session.afterSubmit = "https://www.linkedin.com/checkpoint/challenge"
		launcher := &fakeLauncher{session: session}

		result := New(launcher, testCredentials(), WithTiming(zeroTiming())).Scrape(context.Background(), profileURL)

		assert.True(t, result.IsOK(), result.Err)
	})

	t.Run("strict fails", func(t *testing.T) {
		session := newFakeSession()
		session.afterSubmit = DefaultLoginURL
		launcher := &fakeLauncher{session: session}

		result := New(launcher, testCredentials(),
			WithTiming(zeroTiming()),
			WithStrictLogin(true),
		).Scrape(context.Background(), profileURL)

		assert.False(t, result.IsOK())
		assert.Contains(t, result.Err, "login failed")
		assert.Equal(t, []string{DefaultLoginURL}, session.navigations)
		assert.Equal(t, 1, session.closes)
	})
}

func TestScrape_CancelledContext(t *testing.T) {
	session := newFakeSession()
	launcher := &fakeLauncher{session: session}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := New(launcher, testCredentials(), WithTiming(zeroTiming())).Scrape(ctx, profileURL)

	assert.False(t, result.IsOK())
	assert.Contains(t, result.Err, context.Canceled.Error())
	assert.Equal(t, 1, session.closes)
}

func TestSkillsURL(t *testing.T) {
	assert.Equal(t, "https://www.linkedin.com/in/jane/details/skills/", SkillsURL("https://www.linkedin.com/in/jane/"))
	assert.Equal(t, "https://www.linkedin.com/in/jane/details/skills/", SkillsURL("https://www.linkedin.com/in/jane"))
}

func TestIsLoginPage(t *testing.T) {
	assert.True(t, isLoginPage("https://www.linkedin.com/login"))
	assert.True(t, isLoginPage("https://www.linkedin.com/checkpoint/lg/login-submit"))
	assert.True(t, isLoginPage(""))
	assert.False(t, isLoginPage("https://www.linkedin.com/feed/"))
}
