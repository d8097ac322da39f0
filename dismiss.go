package hcpdf

import (
	"context"
	"log/slog"
)

// Cookie-consent heuristic inputs.
const (
	consentSelector = `[id*=cookie] a, [class*=cookie] a, [id*=cookie] button, [class*=cookie] button, [data-cookiebanner*=accept] button`
	consentPattern  = `^(Alle akzeptieren|Akzeptieren|Verstanden|Zustimmen|Okay|OK)$`
)

// dismissConsentJS clicks the first consent-banner control whose trimmed
// text matches consentPattern. Returns "clicked" or "none".
const dismissConsentJS = `() => {
	const pattern = new RegExp(` + "`" + consentPattern + "`" + `, 'i');
	const candidates = document.querySelectorAll(` + "`" + consentSelector + "`" + `);
	const matches = Array.prototype.filter.call(candidates, (el) =>
		pattern.test((el.textContent || '').trim()));
	if (matches.length === 0) {
		return 'none';
	}
	matches[0].click();
	return 'clicked';
}`

// dismissConsentBanner runs the consent heuristic. It never fails: errors
// are logged and the capture continues.
func dismissConsentBanner(ctx context.Context, page Page, log *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			log.WarnContext(ctx, "cookie banner dismissal panicked", "panic", r)
		}
	}()

	result, err := page.Eval(ctx, dismissConsentJS)
	if err != nil {
		log.DebugContext(ctx, "cookie banner dismissal failed", "error", err)
		return
	}
	if result == "clicked" {
		log.DebugContext(ctx, "cookie banner dismissed")
	}
}
