package inject

import "strings"

// HeadClose is the marker scripts are inserted in front of.
const HeadClose = "</head>"

// DevModeMarker enables the diagnostic script when present anywhere in the page.
const DevModeMarker = "<!--DEVMODE-->"

// ScriptVersion identifies the revision of AudioScript. Bump it whenever the
// script text changes.
const ScriptVersion = "1"

// DevModeScript is inserted alongside AudioScript for pages carrying DevModeMarker.
const DevModeScript = `<script>console.log('[Dev] Audio script injected');</script>`

// AudioScript selects the Godot audio driver on the client. It reads the
// "audio" query parameter (worklet by default, anything else means legacy),
// waits before initializing so page load is not blocked, and falls back to
// legacy mode if the worklet fails.
const AudioScript = `
    <script type="module" data-godotserve-audio="` + ScriptVersion + `">
    (() => {
        const config = {
            debug: true,
            defaultMode: 'worklet',
            fallbackTimeout: 1500,
            godot4Selector: '#godot-canvas',
            godot3Selector: 'body'
        };

        const params = new URLSearchParams(location.search);
        const forceMode = params.get('audio');
        const useWorklet = forceMode
            ? forceMode === 'worklet'
            : config.defaultMode === 'worklet';

        const perfMark = (name) => config.debug && performance.mark(` + "`audio_${name}`" + `);

        const initAudio = () => {
            perfMark('init_start');

            const audio = document.createElement('audio');
            audio.setAttribute('context', useWorklet ? 'worklet' : 'scriptprocessor');

            const mountPoint = document.querySelector(config.godot4Selector)
                || document.querySelector(config.godot3Selector);

            if (mountPoint) {
                mountPoint.appendChild(audio);

                if (useWorklet) {
                    audio.onerror = () => {
                        console.warn('[Audio] Worklet failed, falling back');
                        location.search = '?audio=legacy';
                    };
                }

                perfMark('init_end');
                if (config.debug) {
                    const measure = performance.measure(
                        'audio_init',
                        'audio_init_start',
                        'audio_init_end'
                    );
                    console.log(` + "`[Audio] Initialized in ${measure.duration.toFixed(2)}ms`" + `);
                }
            }
        };

        setTimeout(initAudio, config.fallbackTimeout);

        if (typeof Engine !== 'undefined') {
            Engine.on('started', () => {
                console.log('[Audio] Godot engine ready');
                initAudio();
            });
        }
    })();
    </script>
    `

// Inject inserts AudioScript before the first </head> in html, preceded by
// DevModeScript when the page carries DevModeMarker. Pages without </head> are
// returned unchanged.
//
// The query string is not interpolated into the output: the script reads
// location.search itself. It is accepted so callers pass the request through
// without caring which parts the rewriter uses.
func Inject(html, query string) string {
	snippet := AudioScript
	if strings.Contains(html, DevModeMarker) {
		snippet = DevModeScript + AudioScript
	}
	out, _ := BeforeHead(html, snippet)
	return out
}

// BeforeHead inserts snippet immediately before the first </head>. It reports
// whether the marker was found; if not, html is returned as is.
func BeforeHead(html, snippet string) (string, bool) {
	pos := strings.Index(html, HeadClose)
	if pos < 0 {
		return html, false
	}

	var b strings.Builder
	b.Grow(len(html) + len(snippet))
	b.WriteString(html[:pos])
	b.WriteString(snippet)
	b.WriteString(html[pos:])
	return b.String(), true
}
