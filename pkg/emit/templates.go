package emit

import "strconv"

// preamble is prepended to every non-empty runtime block. It constructs the
// one process-wide Chaos Engine handle every emitted helper below closes
// over, plus the _kinda_tagged decorator that brackets each helper body
// with push_context/pop_context so the engine can stamp every draw with the
// construct-level helper it served (the outermost tag wins for nested
// helper calls). kinda_runtime is the host-language binding that turns
// _KindaChaosEngine.shared() into a live call into this repository's
// pkg/chaos.Engine; it ships separately from the emitted block.
const preamble = `import math
from kinda_runtime import ChaosEngine as _KindaChaosEngine, SecurityError as _KindaSecurityError

_kinda_chaos = _KindaChaosEngine.shared()

def _kinda_tagged(name):
    def wrap(fn):
        def inner(*args, **kwargs):
            _kinda_chaos.push_context(name)
            try:
                return fn(*args, **kwargs)
            finally:
                _kinda_chaos.pop_context()
        return inner
    return wrap
`

// eventuallyUntilCap and eventuallyUntilMinSamples are the safety-iteration
// cap and minimum-sample floor for eventually_until's
// Wilson-bound stopping rule: too few samples make any confidence bound
// meaningless, and the cap bounds worst-case iteration count regardless of
// how the condition behaves.
const (
	eventuallyUntilCap        = 100000
	eventuallyUntilMinSamples = 10
)

// helperTemplates maps each runtime helper name the Construct Registry can
// reference to its emitted definition. Every helper is a thin wrapper around
// _kinda_chaos — no helper touches a PRNG or the security scanner directly,
// mirroring the Driver indirection pkg/chaos.Engine itself uses internally.
var helperTemplates = map[string]string{
	"chaos_gate": `@_kinda_tagged("chaos_gate")
def chaos_gate(key):
    outcome = _kinda_chaos.random() < _kinda_chaos.probability(key)
    _kinda_chaos.update_state(not outcome)
    return outcome`,

	"secure_cond": `@_kinda_tagged("secure_cond")
def secure_cond(thunk):
    try:
        return bool(thunk())
    except _KindaSecurityError:
        raise
    except (TypeError, ValueError, ZeroDivisionError, AttributeError, IndexError, KeyError, NameError):
        _kinda_chaos.update_state(True)
        return False`,

	"fuzz_tolerance": `@_kinda_tagged("fuzz_tolerance")
def fuzz_tolerance(kind):
    lo, hi = _kinda_chaos.fuzz_range(kind)
    return _kinda_chaos.uniform(lo, hi)`,

	"wilson_lower_bound": `@_kinda_tagged("wilson_lower_bound")
def wilson_lower_bound(successes, total):
    if total == 0:
        return 0.0
    z = 1.959963984540054  # 95% two-sided normal quantile
    phat = successes / total
    denom = 1 + z * z / total
    centre = phat + z * z / (2 * total)
    margin = z * math.sqrt((phat * (1 - phat) + z * z / (4 * total)) / total)
    return (centre - margin) / denom`,

	"chaos_sometimes": `@_kinda_tagged("chaos_sometimes")
def chaos_sometimes(key_or_thunk, maybe_key=None):
    if maybe_key is not None:
        thunk, key = key_or_thunk, maybe_key
        return thunk() if chaos_gate(key) else None
    return chaos_gate(key_or_thunk)`,

	"chaos_maybe": `@_kinda_tagged("chaos_maybe")
def chaos_maybe(key_or_thunk, maybe_key=None):
    if maybe_key is not None:
        thunk, key = key_or_thunk, maybe_key
        return thunk() if chaos_gate(key) else None
    return chaos_gate(key_or_thunk)`,

	"chaos_probably": `@_kinda_tagged("chaos_probably")
def chaos_probably(key_or_thunk, maybe_key=None):
    if maybe_key is not None:
        thunk, key = key_or_thunk, maybe_key
        return thunk() if chaos_gate(key) else None
    return chaos_gate(key_or_thunk)`,

	"chaos_rarely": `@_kinda_tagged("chaos_rarely")
def chaos_rarely(key_or_thunk, maybe_key=None):
    if maybe_key is not None:
        thunk, key = key_or_thunk, maybe_key
        return thunk() if chaos_gate(key) else None
    return chaos_gate(key_or_thunk)`,

	"chaos_sometimes_while": `@_kinda_tagged("chaos_sometimes_while")
def chaos_sometimes_while(key):
    return chaos_gate(key)`,

	"chaos_maybe_for": `@_kinda_tagged("chaos_maybe_for")
def chaos_maybe_for(iterable, key):
    for item in iterable:
        if chaos_gate(key):
            yield item`,

	"kinda_repeat_count": `@_kinda_tagged("kinda_repeat_count")
def kinda_repeat_count(n):
    lo, hi = _kinda_chaos.fuzz_range("int")
    sigma = max(1.0, (hi - lo) / 2.0)
    k = int(round(_kinda_chaos.gauss(n, sigma)))
    return max(0, k)`,

	"eventually_until_runner": `@_kinda_tagged("eventually_until_runner")
def eventually_until_runner(cond_thunk):
    successes, total = 0, 0
    threshold = _kinda_chaos.confidence_threshold()
    while total < ` + strconv.Itoa(eventuallyUntilCap) + `:
        yield total
        total += 1
        if secure_cond(cond_thunk):
            successes += 1
        if total >= ` + strconv.Itoa(eventuallyUntilMinSamples) + ` and wilson_lower_bound(successes, total) >= threshold:
            return`,

	"assert_eventually_runner": `@_kinda_tagged("assert_eventually_runner")
def assert_eventually_runner(cond_thunk):
    successes, total = 0, 0
    threshold = _kinda_chaos.confidence_threshold()
    while total < ` + strconv.Itoa(eventuallyUntilCap) + `:
        yield total
        total += 1
        if secure_cond(cond_thunk):
            successes += 1
        if total >= ` + strconv.Itoa(eventuallyUntilMinSamples) + ` and wilson_lower_bound(successes, total) >= threshold:
            return
    raise AssertionError("assert_eventually: confidence threshold not reached within %d iterations" % ` + strconv.Itoa(eventuallyUntilCap) + `)`,

	"ish_compare": `@_kinda_tagged("ish_compare")
def ish_compare(lhs, rhs):
    return abs(lhs - rhs) <= fuzz_tolerance("ish")`,

	"drift_value": `@_kinda_tagged("drift_value")
def drift_value(value):
    return value + fuzz_tolerance("float")`,

	"kinda_int_value": `@_kinda_tagged("kinda_int_value")
def kinda_int_value(value):
    return int(round(value + fuzz_tolerance("int")))`,

	"kinda_float_value": `@_kinda_tagged("kinda_float_value")
def kinda_float_value(value):
    return value + fuzz_tolerance("float")`,

	"kinda_bool_value": `@_kinda_tagged("kinda_bool_value")
def kinda_bool_value(value, key):
    if chaos_gate(key):
        return bool(value)
    return not bool(value)`,

	"kinda_binary_value": `@_kinda_tagged("kinda_binary_value")
def kinda_binary_value(key):
    return 1 if chaos_gate(key) else -1`,

	"sorta_print": `@_kinda_tagged("sorta_print")
def sorta_print(key, *args):
    if chaos_gate(key):
        print(*args)`,

	"welp_fallback": `@_kinda_tagged("welp_fallback")
def welp_fallback(thunk, fallback):
    try:
        return thunk()
    except _KindaSecurityError:
        raise
    except Exception:
        _kinda_chaos.update_state(True)
        return fallback`,

	"assert_probability_check": `@_kinda_tagged("assert_probability_check")
def assert_probability_check(key, expected, tolerance=0.05):
    actual = _kinda_chaos.probability(key)
    if abs(actual - expected) > tolerance:
        raise AssertionError("assert_probability: %s expected ~%.3f got %.3f" % (key, expected, actual))
    return True`,
}
