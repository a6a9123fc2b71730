package help

const QuickstartYAML = `# har2csv Quick Start

capture:
  - "Open the search page in a browser with devtools on the Network tab"
  - "Scroll through the results so every page of listings is requested"
  - "Right-click the request list and choose 'Save all as HAR'"

schema_variants:
  scoring: "19 listing columns + Profitability Score (default)"
  plain: "26 listing columns, no score"

commands:
  basic_convert: |
    har2csv convert search.har            # writes search.csv next to it

  explicit_output: |
    har2csv convert search.har -o out/listings.csv

  plain_columns: |
    har2csv convert search.har --variant plain

  other_endpoint: |
    har2csv convert capture.har --endpoint "example.com/api/search" --container-keys "items,results"

  with_history: |
    har2csv convert search.har --history ~/.har2csv/history.db
    har2csv runs list --history ~/.har2csv/history.db
    har2csv runs show <run-id-prefix> --history ~/.har2csv/history.db

  diagnose: |
    har2csv inspect search.har            # YAML verdict per exchange

  watch_folder: |
    har2csv watch ~/Downloads/captures    # converts every .har dropped in

config_file:
  example: |
    schema_variant: scoring
    target_endpoint_substring: turo.com/api/v2/search
    container_keys: [vehicles, results, data, banners]
    score_column: Profitability Score
    # columns: [make, model, avgDailyPrice.amount]
    # history_db: /home/me/.har2csv/history.db
  precedence: "flags > config file > built-in defaults"

extraction_rules:
  - "Only POST requests whose URL contains the endpoint substring (case-insensitive)"
  - "Response mime type must contain 'json' and the body must be non-empty"
  - "Container keys are read in order; a top-level array contributes its elements"
  - "Malformed bodies are skipped, never fatal"

profitability_score:
  formula: "avgDailyPrice.amount * completedTrips * (rating / 5) * bonus, rounded to 2 places"
  defaults: "rating 5 when missing; price and trips 0 when missing"
  bonus: "1.1 only when isAllStarHost is the string \"True\""

error_behavior:
  - "Missing or unreadable input: nothing written"
  - "No records found: nothing written"
  - "Exit codes: 0=success, 1=usage error, 2=runtime failure, 3=no data"
`
