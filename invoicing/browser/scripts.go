package browser

import (
	"fmt"

	"github.com/go-faster/jx"
)

// jsString quotes s as a JavaScript string literal.
func jsString(s string) string {
	var e jx.Encoder
	e.Str(s)
	return string(e.Bytes())
}

// Scripts below run in the stage page. Mount scripts resolve once the
// frame has loaded.

func mountHiddenScript(id, src string) string {
	return fmt.Sprintf(`new Promise((resolve, reject) => {
	const f = document.createElement('iframe');
	f.id = %s;
	f.style.cssText = 'position:fixed;right:0;bottom:0;width:0;height:0;border:0;visibility:hidden';
	f.onload = () => resolve(true);
	f.onerror = () => reject(new Error('load failed'));
	f.src = %s;
	document.body.appendChild(f);
})`, jsString(id), jsString(src))
}

// printScript returns false when the frame is gone. print() is deferred so
// a modal dialog does not block the evaluation.
func printScript(id string) string {
	return fmt.Sprintf(`(() => {
	const f = document.getElementById(%s);
	if (!f) return false;
	setTimeout(() => { f.contentWindow.focus(); f.contentWindow.print(); }, 0);
	return true;
})()`, jsString(id))
}

func removeScript(id string) string {
	return fmt.Sprintf(`(() => {
	const f = document.getElementById(%s);
	if (f) f.remove();
	return !!f;
})()`, jsString(id))
}

// mountIntoScript resolves to false when the container does not exist.
func mountIntoScript(containerID, src string) string {
	return fmt.Sprintf(`new Promise((resolve, reject) => {
	const c = document.getElementById(%s);
	if (!c) { resolve(false); return; }
	const f = document.createElement('iframe');
	f.style.cssText = 'width:100%%;height:100%%;border:0';
	f.onload = () => resolve(true);
	f.onerror = () => reject(new Error('load failed'));
	f.src = %s;
	c.innerHTML = '';
	c.appendChild(f);
})`, jsString(containerID), jsString(src))
}

func saveScript(src, filename string) string {
	return fmt.Sprintf(`(() => {
	const a = document.createElement('a');
	a.href = %s;
	a.download = %s;
	a.target = '_blank';
	document.body.appendChild(a);
	a.click();
	a.remove();
	return true;
})()`, jsString(src), jsString(filename))
}
